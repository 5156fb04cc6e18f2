package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write would violate a uniqueness rule.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrQuotaExceeded is returned when the backend rejects a write for
	// space reasons. Free disk space or leave restricted storage mode.
	ErrQuotaExceeded = errors.New("persistence: storage quota exceeded, free up space and retry")
	// ErrInvalidState is returned when the backend reports an inconsistent
	// internal state. Reopening the store is the usual remedy.
	ErrInvalidState = errors.New("persistence: storage is in an invalid state, reopen and retry")
	// ErrBlocked is returned when the host environment denies storage access.
	ErrBlocked = errors.New("persistence: storage access blocked by the environment")
	// ErrUnavailable is returned when the backend cannot be opened at all,
	// e.g. under restrictive privacy modes. Callers degrade rather than crash.
	ErrUnavailable = errors.New("persistence: storage backend unavailable")
)
