package monitor

import (
	"fmt"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

// PresenceMonitor tracks whether the physical panel is attached.
//
// It is the only writer of the presence field. When a panel is reattached
// it submits the configured default display, so a replugged panel shows a
// sane screen instead of whatever its firmware last rendered. Nothing
// else is replayed: a reattached panel starts from fresh explicit state.
type PresenceMonitor struct {
	bus      Bus
	manager  *state.Manager
	actions  Submitter
	defaults config.DisplayConfig
	qos      byte
	logger   Logger
}

// NewPresenceMonitor creates the presence adapter.
func NewPresenceMonitor(bus Bus, manager *state.Manager, actions Submitter, defaults config.DisplayConfig, qos byte) *PresenceMonitor {
	return &PresenceMonitor{
		bus:      bus,
		manager:  manager,
		actions:  actions,
		defaults: defaults,
		qos:      qos,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the monitor.
func (m *PresenceMonitor) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Start subscribes to the presence topic. The broker's retained message
// delivers the current presence value immediately.
func (m *PresenceMonitor) Start() error {
	topic := mqtt.Topics{}.PanelPresence()
	if err := m.bus.Subscribe(topic, m.qos, m.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

func (m *PresenceMonitor) handle(topic string, payload []byte) error {
	present, err := decodePresence(payload)
	if err != nil {
		m.logger.Warn("discarding malformed presence payload", "topic", topic, "error", err)
		return nil
	}

	wasPresent := m.manager.Presence()
	m.manager.UpdatePresence(present)

	if present && !wasPresent {
		action := transport.ActionDisplay{
			Line1: m.defaults.Line1,
			Line2: m.defaults.Line2,
		}
		if err := m.actions.Submit(action); err != nil {
			m.logger.Warn("default display after reattach not queued", "error", err)
		}
	}
	return nil
}
