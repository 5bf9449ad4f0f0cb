package domain

import "errors"

// Sentinel errors recovered into user-facing responses at the transport
// boundary. Anything else propagates as a generic storage failure.
var (
	// ErrInvalidFilter marks search input rejected before any query runs.
	ErrInvalidFilter = errors.New("invalid search filter")

	// ErrNotFound covers missing trials and alerts. An alert owned by
	// another viewer reports ErrNotFound too, so ownership never leaks.
	ErrNotFound = errors.New("not found")

	// ErrAlreadySaved marks a duplicate save of the same (viewer, trial).
	ErrAlreadySaved = errors.New("trial already saved")

	// ErrEmptyUpdate marks a partial update carrying zero fields.
	ErrEmptyUpdate = errors.New("no fields to update")
)
