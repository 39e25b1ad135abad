// Package apperrors defines the error taxonomy shared by every sync component.
//
// Each error carries a Kind that tells the caller how to react:
//
//   - KindConfiguration: bad root path, unreadable topology, too few accounts. Fatal at startup.
//   - KindCorruptDatabase: the saved variables text could not be decoded.
//   - KindSnapshotDecode: one character payload does not have the expected shape. Skip the entry.
//   - KindPersistence: writing a database file failed. Report, keep going with other targets.
//   - KindPathMapping: a changed file does not belong to a registered account. Log and ignore.
//
// # Usage
//
//	if apperrors.Is(err, apperrors.KindSnapshotDecode) {
//	    logger.Warn("skipping character", zap.Error(err))
//	}
package apperrors
