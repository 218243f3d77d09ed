package sales

import "errors"

// Failure taxonomy. Every error returned by the service wraps exactly one of
// these sentinels so callers can dispatch with errors.Is.
var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation error")

	// ErrBusinessRule is returned when an operation is forbidden by the
	// sale's current state.
	ErrBusinessRule = errors.New("business rule violation")

	// ErrNotFound is returned when a referenced sale or item is absent.
	ErrNotFound = errors.New("not found")

	// ErrInternal is returned for unexpected storage failures.
	ErrInternal = errors.New("internal error")
)
