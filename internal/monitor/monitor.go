package monitor

import (
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/transport"
)

// Logger defines the logging interface for the signal adapters.
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

// Bus is the slice of the MQTT client the adapters need.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Submitter enqueues hardware actions for the panel.
type Submitter interface {
	Submit(action transport.Action) error
}
