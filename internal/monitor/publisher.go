package monitor

import (
	"encoding/json"

	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/state"
)

// StatePublisher mirrors every PanelState change to the retained state
// topic, so external observers (UIs, other services) always see the
// current snapshot without querying.
type StatePublisher struct {
	bus    Bus
	qos    byte
	logger Logger
}

// NewStatePublisher creates the publisher and registers it with the manager.
func NewStatePublisher(manager *state.Manager, bus Bus, qos byte) *StatePublisher {
	p := &StatePublisher{
		bus:    bus,
		qos:    qos,
		logger: noopLogger{},
	}
	manager.Subscribe(p.onStateChange)
	return p
}

// SetLogger sets the logger for the publisher.
func (p *StatePublisher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

func (p *StatePublisher) onStateChange(ev state.Event) {
	payload, err := json.Marshal(ev.State)
	if err != nil {
		p.logger.Error("marshalling panel state failed", "error", err)
		return
	}

	topic := mqtt.Topics{}.PanelState()
	if err := p.bus.Publish(topic, payload, p.qos, true); err != nil {
		p.logger.Warn("publishing panel state failed", "topic", topic, "error", err)
	}
}
