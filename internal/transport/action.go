package transport

import (
	"context"
	"errors"

	"github.com/panelworks/panel-core/internal/state"
)

// Action is one idempotent hardware effect for the panel. Every action is
// a full-state write: applying the same action twice leaves the hardware
// in the same state as applying it once.
type Action interface {
	// Kind returns a stable name for logging and telemetry.
	Kind() string
}

// ActionDisplay renders two lines of text on the panel LCD.
type ActionDisplay struct {
	Line1 string
	Line2 string
}

// Kind implements Action.
func (ActionDisplay) Kind() string { return "display" }

// ActionLampTest drives every panel indicator for a visual check.
type ActionLampTest struct{}

// Kind implements Action.
func (ActionLampTest) Kind() string { return "lamp_test" }

// ActionFunctionMask applies the complete set of enabled panel functions.
// Functions absent from the set are disabled by the same write.
type ActionFunctionMask struct {
	Enabled state.FunctionSet
}

// Kind implements Action.
func (ActionFunctionMask) Kind() string { return "function_mask" }

// Transport delivers actions to the physical panel.
type Transport interface {
	// Send delivers one action. It blocks until the panel acknowledges,
	// the deadlines expire, or ctx is cancelled. Errors match
	// ErrUnreachable or ErrProtocol via errors.Is.
	Send(ctx context.Context, action Action) error
}

// Result classifies the outcome of a send for logging and telemetry.
type Result string

// Send outcomes.
const (
	ResultOK            Result = "ok"
	ResultUnreachable   Result = "unreachable"
	ResultProtocolError Result = "protocol_error"
	ResultInvalidAction Result = "invalid_action"
)

// Classify maps a Send error onto a Result. A nil error is ResultOK;
// actions the codec rejects are invalid_action, protocol violations
// from the panel are protocol_error, and anything else counts as
// unreachable.
func Classify(err error) Result {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrInvalidAction):
		return ResultInvalidAction
	case errors.Is(err, ErrProtocol):
		return ResultProtocolError
	default:
		return ResultUnreachable
	}
}
