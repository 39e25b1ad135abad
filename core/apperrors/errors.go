package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes an error by how the sync loop should react to it.
type Kind string

const (
	// KindUnknown indicates an uncategorized error.
	KindUnknown Kind = "unknown"

	// KindConfiguration indicates a bad root path, topology, or account list.
	KindConfiguration Kind = "configuration"

	// KindCorruptDatabase indicates malformed table text or a missing wrapper identifier.
	KindCorruptDatabase Kind = "corrupt_database"

	// KindSnapshotDecode indicates a character payload that does not match the expected fields.
	KindSnapshotDecode Kind = "snapshot_decode"

	// KindPersistence indicates a failure writing a database file.
	KindPersistence Kind = "persistence"

	// KindPathMapping indicates a changed path that does not resolve to a known account.
	KindPathMapping Kind = "path_mapping"
)

// Error is a categorized error with optional cause and metadata.
type Error struct {
	// Kind is the error category.
	Kind Kind

	// Message is the human-readable description.
	Message string

	// Cause is the wrapped error.
	Cause error

	// Meta carries structured context such as account, realm, or path.
	Meta map[string]any
}

// Error returns the error message including the cause.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds a metadata entry and returns the same error.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with the given kind. It returns nil if err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Kind: kind, Message: message, Cause: err}

	var appErr *Error
	if errors.As(err, &appErr) {
		wrapped.Meta = copyMeta(appErr.Meta)
	}
	return wrapped
}

// Wrapf wraps err with the given kind and a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, kind, fmt.Sprintf(format, args...))
}

// Configurationf creates a formatted configuration error.
func Configurationf(format string, args ...any) *Error {
	return Newf(KindConfiguration, format, args...)
}

// CorruptDatabasef creates a formatted corrupt database error.
func CorruptDatabasef(format string, args ...any) *Error {
	return Newf(KindCorruptDatabase, format, args...)
}

// PathMappingf creates a formatted path mapping error.
func PathMappingf(format string, args ...any) *Error {
	return Newf(KindPathMapping, format, args...)
}

// Is reports whether any error in err's tree has the given kind.
// Joined errors are searched branch by branch.
func Is(err error, kind Kind) bool {
	switch e := err.(type) {
	case nil:
		return false
	case *Error:
		if e.Kind == kind {
			return true
		}
		return Is(e.Cause, kind)
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if Is(inner, kind) {
				return true
			}
		}
		return false
	case interface{ Unwrap() error }:
		return Is(e.Unwrap(), kind)
	default:
		return false
	}
}

// KindOf returns the kind of the outermost categorized error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MetaOf returns the metadata of the outermost categorized error in err's chain.
func MetaOf(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
