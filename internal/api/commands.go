package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

// DisplayRequest is the body of POST /display.
type DisplayRequest struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// LampTestRequest is the body of POST /lamptest.
type LampTestRequest struct {
	Enabled bool `json:"enabled"`
}

// FunctionsRequest is the body of POST /functions. Mask is a base64 byte
// array where bit index equals the function number; function numbering
// starts at 1, so bit 0 is ignored.
type FunctionsRequest struct {
	Mask []byte `json:"mask"`
}

// handleDisplay validates and queues a display render.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	var req DisplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	if len(req.Line1) > s.columns || len(req.Line2) > s.columns {
		writeBadRequest(w, fmt.Sprintf("display lines must be at most %d characters", s.columns))
		return
	}

	s.submitAction(w, transport.ActionDisplay{Line1: req.Line1, Line2: req.Line2})
}

// handleLampTest queues a lamp test, or restores the default display when
// the test ends.
func (s *Server) handleLampTest(w http.ResponseWriter, r *http.Request) {
	var req LampTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	var action transport.Action
	if req.Enabled {
		action = transport.ActionLampTest{}
	} else {
		action = transport.ActionDisplay{Line1: s.defaults.Line1, Line2: s.defaults.Line2}
	}

	s.submitAction(w, action)
}

// handleFunctions applies a complete function bitmask. Each function in
// the union of the current and desired sets is toggled individually, the
// same walk the bus command path performs, so partial rejection leaves
// the state manager and hardware consistent with whatever was applied.
func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	var req FunctionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	desired := state.FunctionSetFromMask(req.Mask)
	current := s.manager.Snapshot().Functions

	changed := false
	for fn := state.FunctionID(1); ; fn++ {
		want := desired.Has(fn)
		if current.Has(fn) != want {
			if err := s.manager.SetFunctionEnabled(fn, want); err != nil {
				if errors.Is(err, state.ErrPanelAbsent) {
					writeConflict(w, "panel is not present")
					return
				}
				s.logger.Warn("function toggle failed", "function", fn, "error", err)
			} else {
				changed = true
			}
		}
		if fn == state.MaxFunction {
			break
		}
	}

	applied := s.manager.Snapshot()
	if changed {
		if err := s.actions.Submit(transport.ActionFunctionMask{Enabled: applied.Functions}); err != nil {
			s.logger.Warn("function mask not queued", "error", err)
			writeServiceUnavailable(w, "action queue unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enabled_functions": applied.EnabledFunctions,
		"changed":           changed,
	})
}

// submitAction queues an action and reports the outcome. Queued is not
// executed: the executor applies its own presence check at dispatch time.
func (s *Server) submitAction(w http.ResponseWriter, action transport.Action) {
	if err := s.actions.Submit(action); err != nil {
		s.logger.Warn("action not queued", "kind", action.Kind(), "error", err)
		writeServiceUnavailable(w, "action queue unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"queued": true,
		"kind":   action.Kind(),
	})
}
