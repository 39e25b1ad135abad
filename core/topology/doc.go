// Package topology enumerates the accounts, realms, and characters that scope synchronization.
//
// The layout on disk is:
//
//	<root>/<account>/<realm>/<character>/
//	<root>/<account>/SavedVariables/<database file>
//
// Load walks that tree once at startup. The result is read-only: characters created later
// are never synchronized until the process restarts.
package topology
