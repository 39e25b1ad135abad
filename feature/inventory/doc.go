// Package inventory keeps character inventory snapshots in sync across game accounts.
//
// Each account stores the inventories of its own characters in a saved variables database.
// The Orchestrator first folds every account's snapshots into every other account (Sync),
// then waits for completed saves and pushes the changed account's snapshots to the rest
// (Run). Merges only ever replace whole character entries inside realms the target already
// has, and a target is written only when its content actually changed.
//
// # Components
//
//   - Store: loads and atomically saves account databases.
//   - Extract: turns a database into InventorySet snapshots scoped by topology.
//   - Merge and Propagator: apply snapshots to other accounts.
//   - Plan: the startup fold, applied once per account with optional dry-run.
//   - Orchestrator: startup and steady-state control flow.
package inventory
