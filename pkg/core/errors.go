package core

import "errors"

// Common errors. Failures are surfaced as one of these sentinels, usually
// wrapped with operation context via fmt.Errorf and %w. Cancellation is
// reported as the context's own error.
var (
	// ErrConnection indicates the store is unreachable or the session is closed.
	ErrConnection = errors.New("store unavailable")

	// ErrUnknownField indicates a field name with no mapping for the type.
	ErrUnknownField = errors.New("unknown field")

	// ErrNotFound indicates an identifier-based operation found no target.
	ErrNotFound = errors.New("document not found")

	// ErrValidation indicates a document or mapping failed resolution before a write.
	ErrValidation = errors.New("validation failed")

	// ErrBadJob indicates a malformed reduction job definition.
	ErrBadJob = errors.New("invalid aggregation job")
)
