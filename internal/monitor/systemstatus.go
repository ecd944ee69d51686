package monitor

import (
	"fmt"

	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/state"
)

// SystemStatusMonitor feeds the aggregate platform signals into the
// state manager: BMC state, chassis power state, host boot progress, and
// the three policy settings that drive the operating mode.
//
// All six channels are retained on the broker, so subscribing doubles as
// the initial synchronous read: the current value of every channel
// arrives immediately, before any change notification. Arrival order is
// irrelevant; each handler only writes its own field and the manager
// rederives the operating mode from whatever triple is current.
type SystemStatusMonitor struct {
	bus     Bus
	manager *state.Manager
	qos     byte
	logger  Logger
}

// NewSystemStatusMonitor creates the aggregate status adapter.
func NewSystemStatusMonitor(bus Bus, manager *state.Manager, qos byte) *SystemStatusMonitor {
	return &SystemStatusMonitor{
		bus:     bus,
		manager: manager,
		qos:     qos,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the monitor.
func (m *SystemStatusMonitor) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Start subscribes to all six status channels.
func (m *SystemStatusMonitor) Start() error {
	topics := mqtt.Topics{}
	subscriptions := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.BMCState(), m.handleBMCState},
		{topics.PowerState(), m.handlePowerState},
		{topics.BootProgress(), m.handleBootProgress},
		{topics.LoggingSetting(), m.handleLoggingSetting},
		{topics.PowerRestorePolicy(), m.handlePowerRestorePolicy},
		{topics.AutoRebootSetting(), m.handleAutoRebootSetting},
	}

	for _, sub := range subscriptions {
		if err := m.bus.Subscribe(sub.topic, m.qos, sub.handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", sub.topic, err)
		}
	}
	return nil
}

func (m *SystemStatusMonitor) handleBMCState(topic string, payload []byte) error {
	s, err := decodeBMCState(payload)
	if err != nil {
		m.logger.Warn("discarding malformed bmc state payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdateBMCState(s)
	return nil
}

func (m *SystemStatusMonitor) handlePowerState(topic string, payload []byte) error {
	s, err := decodePowerState(payload)
	if err != nil {
		m.logger.Warn("discarding malformed power state payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdatePowerState(s)
	return nil
}

func (m *SystemStatusMonitor) handleBootProgress(topic string, payload []byte) error {
	s, err := decodeBootProgress(payload)
	if err != nil {
		m.logger.Warn("discarding malformed boot progress payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdateBootProgress(s)
	return nil
}

func (m *SystemStatusMonitor) handleLoggingSetting(topic string, payload []byte) error {
	enabled, err := decodeEnabled(payload)
	if err != nil {
		m.logger.Warn("discarding malformed logging setting payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdateLoggingPolicy(enabled)
	return nil
}

func (m *SystemStatusMonitor) handlePowerRestorePolicy(topic string, payload []byte) error {
	policy, err := decodePowerPolicy(payload)
	if err != nil {
		m.logger.Warn("discarding malformed power policy payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdatePowerPolicy(policy)
	return nil
}

func (m *SystemStatusMonitor) handleAutoRebootSetting(topic string, payload []byte) error {
	enabled, err := decodeEnabled(payload)
	if err != nil {
		m.logger.Warn("discarding malformed auto reboot payload", "topic", topic, "error", err)
		return nil
	}
	m.manager.UpdateRebootPolicy(enabled)
	return nil
}
