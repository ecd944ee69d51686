// Package transport carries idempotent hardware actions to the physical
// front panel.
//
// An Action is an immutable value describing one desired hardware effect:
// render a display, run a lamp test, or apply a function bitmask. Actions
// are full-state writes, so re-sending one is always safe.
//
// PanelLink is the production Transport: it speaks a small size-prefixed
// frame protocol to the panel microcontroller over a TCP or unix stream
// socket. Every send dials fresh, writes one frame under a deadline, and
// waits for a single ack byte, so a wedged panel can never stall a caller
// beyond the configured timeouts.
//
// Failures are classified into two sentinel errors: ErrUnreachable (the
// panel cannot be dialled or the connection died mid-frame) and
// ErrProtocol (the panel answered, but wrongly). Classify maps any send
// error onto a Result for logging and telemetry.
package transport
