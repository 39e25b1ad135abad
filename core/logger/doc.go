// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and can write to a size-rotated log file instead of stderr.
//
// # Correlation
//
// Sync work is correlated by account and by cycle. WithAccount tags entries with the account
// being read or written, and WithCycle tags every entry of one sync cycle with the same
// cycle_id so a single file change can be followed across all target accounts.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//   - File: optional log file, rotated at MaxSizeMB keeping MaxBackups old files
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Watching accounts")
//
//	// Inside a sync cycle:
//	l := logger.WithCycle(log, cycleID)
//	l.Error("Propagation failed", zap.Error(err))
package logger
