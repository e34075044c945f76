package analytics

import "errors"

// Sentinel errors for the engine's error taxonomy. Insufficient history is
// deliberately not an error: it is modeled as a successful low-confidence
// prediction.
var (
	// ErrNotFound marks a referenced asset or company that does not
	// exist. Never cached, never retried.
	ErrNotFound = errors.New("not found")

	// ErrComputation wraps any unexpected failure while running a model,
	// including recovered panics. Never partially cached.
	ErrComputation = errors.New("computation failed")

	// ErrInvalidInput marks caller-supplied arguments that fail
	// validation before any model runs.
	ErrInvalidInput = errors.New("invalid input")
)
