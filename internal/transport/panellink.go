package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/state"
)

// Timeouts for one frame exchange with the panel microcontroller.
const (
	// dialTimeout bounds each connection attempt.
	dialTimeout = 500 * time.Millisecond

	// exchangeTimeout bounds the write-frame/read-ack round trip.
	exchangeTimeout = 2 * time.Second
)

// Frame commands understood by the panel firmware.
const (
	cmdDisplay      byte = 0x01
	cmdLampTest     byte = 0x02
	cmdFunctionMask byte = 0x03
)

// ackOK is the single status byte the panel returns for an accepted frame.
const ackOK byte = 0x00

// Logger defines the logging interface for the panel link.
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

// PanelLink is the socket-backed Transport to the panel microcontroller.
//
// Each Send opens a fresh connection, writes one size-prefixed frame, and
// waits for a one-byte ack. Panel actions happen at human pace, so
// per-send dialling keeps the link stateless and makes reachability a
// property of each individual send rather than of a long-lived session.
type PanelLink struct {
	network string
	address string
	lines   int
	columns int
	logger  Logger
}

// NewPanelLink creates a panel link from configuration.
func NewPanelLink(cfg config.PanelConfig) (*PanelLink, error) {
	network, address, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	lines := cfg.DisplayLines
	if lines == 0 {
		lines = 2
	}
	columns := cfg.DisplayColumns
	if columns == 0 {
		columns = 16
	}

	return &PanelLink{
		network: network,
		address: address,
		lines:   lines,
		columns: columns,
		logger:  noopLogger{},
	}, nil
}

// SetLogger sets the logger for the link.
func (l *PanelLink) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	l.logger = logger
}

// parseEndpoint splits a tcp://host:port or unix:///path URL into a
// network and address for net.Dial.
func parseEndpoint(endpoint string) (network, address string, err error) {
	switch {
	case strings.HasPrefix(endpoint, "tcp://"):
		address = strings.TrimPrefix(endpoint, "tcp://")
		if address == "" {
			return "", "", fmt.Errorf("%w: %q has no address", ErrInvalidEndpoint, endpoint)
		}
		return "tcp", address, nil
	case strings.HasPrefix(endpoint, "unix://"):
		address = strings.TrimPrefix(endpoint, "unix://")
		if address == "" {
			return "", "", fmt.Errorf("%w: %q has no socket path", ErrInvalidEndpoint, endpoint)
		}
		return "unix", address, nil
	default:
		return "", "", fmt.Errorf("%w: %q (want tcp:// or unix://)", ErrInvalidEndpoint, endpoint)
	}
}

// Send delivers one action to the panel. Dial and exchange failures map to
// ErrUnreachable; a malformed or negative ack maps to ErrProtocol.
func (l *PanelLink) Send(ctx context.Context, action Action) error {
	frame, err := l.encode(action)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, l.network, l.address)
	if err != nil {
		return fmt.Errorf("%w: dial %s %s: %v", ErrUnreachable, l.network, l.address, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(exchangeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("%w: set deadline: %v", ErrUnreachable, err)
	}

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("%w: write %s frame: %v", ErrUnreachable, action.Kind(), err)
	}

	ack := make([]byte, 1)
	if _, err := io.ReadFull(conn, ack); err != nil {
		return fmt.Errorf("%w: read ack for %s: %v", ErrUnreachable, action.Kind(), err)
	}
	if ack[0] != ackOK {
		return fmt.Errorf("%w: panel rejected %s frame (status 0x%02X)", ErrProtocol, action.Kind(), ack[0])
	}

	l.logger.Debug("panel action sent", "kind", action.Kind())
	return nil
}

// encode builds the wire frame for an action:
// 2-byte big-endian payload size, 1-byte command, payload.
func (l *PanelLink) encode(action Action) ([]byte, error) {
	var cmd byte
	var payload []byte

	switch a := action.(type) {
	case ActionDisplay:
		cmd = cmdDisplay
		p, err := l.encodeDisplay(a)
		if err != nil {
			return nil, err
		}
		payload = p
	case ActionLampTest:
		cmd = cmdLampTest
	case ActionFunctionMask:
		cmd = cmdFunctionMask
		payload = encodeFunctionMask(a.Enabled)
	default:
		return nil, fmt.Errorf("%w: unknown action %T", ErrInvalidAction, action)
	}

	frame := make([]byte, 0, 3+len(payload))
	frame = binary.BigEndian.AppendUint16(frame, uint16(1+len(payload))) //nolint:gosec // payload is display- or mask-sized
	frame = append(frame, cmd)
	frame = append(frame, payload...)
	return frame, nil
}

// encodeDisplay pads each line with spaces to the panel width. Over-length
// lines are rejected; callers validate earlier, this is the last gate
// before the wire.
func (l *PanelLink) encodeDisplay(a ActionDisplay) ([]byte, error) {
	lines := []string{a.Line1, a.Line2}
	payload := make([]byte, 0, l.lines*l.columns)
	for i, line := range lines[:min(len(lines), l.lines)] {
		if len(line) > l.columns {
			return nil, fmt.Errorf("%w: display line %d is %d characters, panel width is %d",
				ErrInvalidAction, i+1, len(line), l.columns)
		}
		padded := line + strings.Repeat(" ", l.columns-len(line))
		payload = append(payload, padded...)
	}
	return payload, nil
}

// encodeFunctionMask renders the enabled set as a bitmask where bit index
// equals the function number. Bit 0 is always clear.
func encodeFunctionMask(set state.FunctionSet) []byte {
	mask := make([]byte, (int(state.MaxFunction)+1+7)/8)
	for _, fn := range set.List() {
		mask[int(fn)/8] |= 1 << (uint(fn) % 8)
	}
	return mask
}
