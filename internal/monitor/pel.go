package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/pel"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

// persistTimeout bounds the repository write for one notification.
const persistTimeout = 5 * time.Second

// PELMonitor listens for platform event log notifications.
//
// Every notification that decodes is persisted. The display is a second,
// independent concern: it is only driven when the configured display
// function is enabled at the moment the notification arrives, checked per
// notification rather than once at startup so an operator toggling the
// function mid-stream takes effect immediately.
type PELMonitor struct {
	bus     Bus
	manager *state.Manager
	actions Submitter
	repo    pel.Repository
	cfg     config.PELConfig
	columns int
	qos     byte
	logger  Logger
}

// NewPELMonitor creates the platform event log adapter. columns is the
// LCD line width the display lines are fitted to.
func NewPELMonitor(bus Bus, manager *state.Manager, actions Submitter, repo pel.Repository, cfg config.PELConfig, columns int, qos byte) *PELMonitor {
	if columns < 1 {
		columns = 16
	}
	return &PELMonitor{
		bus:     bus,
		manager: manager,
		actions: actions,
		repo:    repo,
		cfg:     cfg,
		columns: columns,
		qos:     qos,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the monitor.
func (m *PELMonitor) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Start subscribes to the event log notification topic. Does nothing when
// the listener is disabled by configuration.
func (m *PELMonitor) Start() error {
	if !m.cfg.Enabled {
		m.logger.Info("pel listener disabled by configuration")
		return nil
	}

	topic := mqtt.Topics{}.PELCreated()
	if err := m.bus.Subscribe(topic, m.qos, m.handle); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

func (m *PELMonitor) handle(topic string, payload []byte) error {
	event, err := decodePELCreated(payload)
	if err != nil {
		m.logger.Warn("discarding malformed pel payload", "topic", topic, "error", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	entry := &pel.Entry{
		PlatformID: event.ID,
		Severity:   event.Severity,
		Message:    event.Message,
		RaisedAt:   event.RaisedAt,
	}
	if err := m.repo.Create(ctx, entry); err != nil {
		m.logger.Error("persisting pel entry failed", "platform_id", event.ID, "error", err)
		// Persistence failure does not block the display path.
	}

	fn := state.FunctionID(m.cfg.DisplayFunction) //nolint:gosec // validated by config
	if !m.manager.FunctionEnabled(fn) {
		m.logger.Debug("pel display suppressed, function disabled",
			"function", m.cfg.DisplayFunction,
			"platform_id", event.ID,
		)
		return nil
	}

	action := transport.ActionDisplay{
		Line1: m.displayLine1(event.ID),
		Line2: fitLine(event.Severity, m.columns),
	}
	if err := m.actions.Submit(action); err != nil {
		m.logger.Warn("pel display not queued", "platform_id", event.ID, "error", err)
	}
	return nil
}

// displayLine1 renders "PEL <hex id>" within the LCD width. IDs wider
// than the line keep their low-order digits, which are the ones that
// distinguish consecutive events.
func (m *PELMonitor) displayLine1(id uint64) string {
	hex := fmt.Sprintf("%08X", id)
	if max := m.columns - len("PEL "); max > 0 && len(hex) > max {
		hex = hex[len(hex)-max:]
	}
	return fitLine("PEL "+hex, m.columns)
}

// fitLine truncates s to the LCD line width.
func fitLine(s string, columns int) string {
	if len(s) <= columns {
		return s
	}
	return s[:columns]
}
