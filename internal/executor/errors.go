package executor

import "errors"

// Domain-specific errors for the action executor.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrQueueFull is returned when the action queue has no room and the
	// submitted action was dropped.
	ErrQueueFull = errors.New("executor: action queue full")

	// ErrStopped is returned when submitting after shutdown has begun.
	ErrStopped = errors.New("executor: stopped")
)
