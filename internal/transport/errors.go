package transport

import "errors"

// Domain-specific errors for panel transport operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnreachable is returned when the panel cannot be dialled or the
	// connection fails before a complete frame exchange.
	ErrUnreachable = errors.New("transport: panel unreachable")

	// ErrProtocol is returned when the panel responds with something other
	// than a well-formed ack.
	ErrProtocol = errors.New("transport: protocol error")

	// ErrInvalidEndpoint is returned when the configured endpoint URL is
	// not a supported tcp:// or unix:// address.
	ErrInvalidEndpoint = errors.New("transport: invalid endpoint")

	// ErrInvalidAction is returned when an action cannot be encoded, for
	// example a display line wider than the panel.
	ErrInvalidAction = errors.New("transport: invalid action")
)
