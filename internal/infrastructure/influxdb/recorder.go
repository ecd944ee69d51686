package influxdb

import (
	"sync"

	"github.com/panelworks/panel-core/internal/state"
)

// Recorder bridges panel-core events into InfluxDB measurements. It
// implements the executor's outcome recorder and subscribes to PanelState
// changes for mode and boot progress telemetry.
//
// A Recorder with a nil client silently drops everything, so callers can
// wire it unconditionally and let configuration decide.
type Recorder struct {
	client *Client

	mu       sync.Mutex
	lastMode state.OperatingMode
}

// NewRecorder creates a recorder. client may be nil when telemetry is
// disabled.
func NewRecorder(client *Client, manager *state.Manager) *Recorder {
	r := &Recorder{client: client}
	if manager != nil {
		r.lastMode = manager.OperatingMode()
		manager.Subscribe(r.onStateChange)
	}
	return r
}

// RecordAction records one hardware action dispatch outcome.
func (r *Recorder) RecordAction(kind, result string) {
	if r.client == nil {
		return
	}
	r.client.WriteActionOutcome(kind, result)
}

func (r *Recorder) onStateChange(ev state.Event) {
	if r.client == nil {
		return
	}

	switch ev.Field {
	case state.FieldOperatingMode:
		r.mu.Lock()
		from := r.lastMode
		r.lastMode = ev.State.OperatingMode
		r.mu.Unlock()
		r.client.WriteModeTransition(string(from), string(ev.State.OperatingMode))
	case state.FieldBootProgress:
		r.client.WriteBootProgress(string(ev.State.BootProgress), ev.State.BootProgress.Order())
	}
}
