package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

// Logger defines the logging interface for the command handler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Bus is the slice of the MQTT client the handler needs.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Submitter enqueues hardware actions for the panel.
type Submitter interface {
	Submit(action transport.Action) error
}

// displayCommand is the payload of the display command topic.
type displayCommand struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// lampTestCommand is the payload of the lamp test command topic.
type lampTestCommand struct {
	Enabled bool `json:"enabled"`
}

// functionStateCommand is the payload of the function state command
// topic. Mask is a base64 byte array where bit index equals the function
// number; function numbering starts at 1, so bit 0 is ignored.
type functionStateCommand struct {
	Mask []byte `json:"mask"`
}

// Handler routes command topics onto state updates and panel actions.
type Handler struct {
	bus      Bus
	manager  *state.Manager
	actions  Submitter
	defaults config.DisplayConfig
	columns  int
	qos      byte
	logger   Logger
}

// New creates the command handler.
func New(bus Bus, manager *state.Manager, actions Submitter, panelCfg config.PanelConfig, qos byte) *Handler {
	columns := panelCfg.DisplayColumns
	if columns == 0 {
		columns = 16
	}
	return &Handler{
		bus:      bus,
		manager:  manager,
		actions:  actions,
		defaults: panelCfg.DefaultDisplay,
		columns:  columns,
		qos:      qos,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	h.logger = logger
}

// Start subscribes to all command topics with one wildcard subscription.
func (h *Handler) Start() error {
	topic := mqtt.Topics{}.AllCommands()
	if err := h.bus.Subscribe(topic, h.qos, h.route); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

// route dispatches one command message by topic.
func (h *Handler) route(topic string, payload []byte) error {
	topics := mqtt.Topics{}
	switch topic {
	case topics.CommandDisplay():
		h.handleDisplay(payload)
	case topics.CommandLampTest():
		h.handleLampTest(payload)
	case topics.CommandFunctionState():
		h.handleFunctionState(payload)
	default:
		h.logger.Warn("unknown command topic", "topic", topic)
	}
	return nil
}

// handleDisplay validates and queues a display render.
func (h *Handler) handleDisplay(payload []byte) {
	var cmd displayCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		h.logger.Warn("rejecting malformed display command", "error", err)
		return
	}

	if len(cmd.Line1) > h.columns || len(cmd.Line2) > h.columns {
		h.logger.Warn("rejecting over-length display command",
			"line1_len", len(cmd.Line1),
			"line2_len", len(cmd.Line2),
			"columns", h.columns,
		)
		return
	}

	if err := h.actions.Submit(transport.ActionDisplay{Line1: cmd.Line1, Line2: cmd.Line2}); err != nil {
		h.logger.Warn("display command not queued", "error", err)
	}
}

// handleLampTest queues a lamp test, or restores the default display when
// the test ends. Ending a test that never ran is harmless: the restore is
// a full-state write like any other display action.
func (h *Handler) handleLampTest(payload []byte) {
	var cmd lampTestCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		h.logger.Warn("rejecting malformed lamp test command", "error", err)
		return
	}

	var action transport.Action
	if cmd.Enabled {
		action = transport.ActionLampTest{}
	} else {
		action = transport.ActionDisplay{Line1: h.defaults.Line1, Line2: h.defaults.Line2}
	}

	if err := h.actions.Submit(action); err != nil {
		h.logger.Warn("lamp test command not queued", "error", err)
	}
}

// handleFunctionState applies a complete function bitmask. Each function
// in the union of the current and desired sets is toggled individually,
// so a partial rejection (panel vanishing mid-walk) leaves the state
// manager and hardware consistent with whatever was applied.
func (h *Handler) handleFunctionState(payload []byte) {
	var cmd functionStateCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		h.logger.Warn("rejecting malformed function state command", "error", err)
		return
	}

	desired := state.FunctionSetFromMask(cmd.Mask)
	current := h.manager.Snapshot().Functions

	changed := false
	for fn := state.FunctionID(1); ; fn++ {
		want := desired.Has(fn)
		if current.Has(fn) != want {
			if err := h.manager.SetFunctionEnabled(fn, want); err != nil {
				if errors.Is(err, state.ErrPanelAbsent) {
					h.logger.Warn("function state command rejected, panel absent", "function", fn)
					return
				}
				h.logger.Warn("function toggle failed", "function", fn, "error", err)
			} else {
				changed = true
			}
		}
		if fn == state.MaxFunction {
			break
		}
	}

	if !changed {
		return
	}

	applied := h.manager.Snapshot().Functions
	if err := h.actions.Submit(transport.ActionFunctionMask{Enabled: applied}); err != nil {
		h.logger.Warn("function mask not queued", "error", err)
	}
}
