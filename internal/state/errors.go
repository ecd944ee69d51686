package state

import "errors"

// Domain-specific errors for panel state operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrPanelAbsent is returned when an operation requires the physical
	// panel to be present and it is not.
	ErrPanelAbsent = errors.New("state: panel not present")

	// ErrInvalidFunction is returned for function numbers outside 1..MaxFunction.
	ErrInvalidFunction = errors.New("state: invalid function number")

	// ErrUnknownMode is returned when a mode table references an operating
	// mode that does not exist.
	ErrUnknownMode = errors.New("state: unknown operating mode")

	// ErrUnknownPolicy is returned when a mode rule references an unknown
	// power policy.
	ErrUnknownPolicy = errors.New("state: unknown power policy")
)
