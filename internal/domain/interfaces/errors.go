package interfaces

import "errors"

// Storage error taxonomy. Repositories translate driver-specific failures
// into these sentinels so the core never inspects driver internals.
var (
	// ErrDuplicateEntity marks a uniqueness-constraint violation on create.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrNotFound marks a lookup that matched no row.
	ErrNotFound = errors.New("entity not found")

	// ErrNoConfirmFile marks a run date with no trade-confirm file, which
	// is a clean no-op day rather than a failure.
	ErrNoConfirmFile = errors.New("no trade-confirm file for date")
)
