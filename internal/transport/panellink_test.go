package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/state"
)

func testPanelConfig(endpoint string) config.PanelConfig {
	return config.PanelConfig{
		Endpoint:       endpoint,
		DisplayLines:   2,
		DisplayColumns: 16,
	}
}

// fakePanel accepts one connection, records the frame it receives, and
// answers with the configured status byte.
type fakePanel struct {
	listener net.Listener
	status   byte
	frames   chan []byte
}

func newFakePanel(t *testing.T, status byte) *fakePanel {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	p := &fakePanel{
		listener: ln,
		status:   status,
		frames:   make(chan []byte, 8),
	}
	t.Cleanup(func() { ln.Close() })

	go p.serve()
	return p
}

func (p *fakePanel) serve() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()

			header := make([]byte, 2)
			if _, err := io.ReadFull(c, header); err != nil {
				return
			}
			size := binary.BigEndian.Uint16(header)
			body := make([]byte, size)
			if _, err := io.ReadFull(c, body); err != nil {
				return
			}
			p.frames <- append(header, body...)
			c.Write([]byte{p.status}) //nolint:errcheck
		}(conn)
	}
}

func (p *fakePanel) endpoint() string {
	return "tcp://" + p.listener.Addr().String()
}

func (p *fakePanel) lastFrame(t *testing.T) []byte {
	t.Helper()
	select {
	case f := <-p.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
		return nil
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		endpoint    string
		wantNetwork string
		wantAddress string
		wantErr     bool
	}{
		{"tcp", "tcp://127.0.0.1:7171", "tcp", "127.0.0.1:7171", false},
		{"unix", "unix:///run/panel.sock", "unix", "/run/panel.sock", false},
		{"empty tcp address", "tcp://", "", "", true},
		{"empty unix path", "unix://", "", "", true},
		{"unknown scheme", "serial:///dev/ttyS0", "", "", true},
		{"bare address", "127.0.0.1:7171", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, address, err := parseEndpoint(tt.endpoint)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEndpoint) {
					t.Fatalf("parseEndpoint() error = %v, want ErrInvalidEndpoint", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEndpoint() error = %v", err)
			}
			if network != tt.wantNetwork || address != tt.wantAddress {
				t.Errorf("parseEndpoint() = (%q, %q), want (%q, %q)",
					network, address, tt.wantNetwork, tt.wantAddress)
			}
		})
	}
}

func TestSendDisplay(t *testing.T) {
	panel := newFakePanel(t, ackOK)

	link, err := NewPanelLink(testPanelConfig(panel.endpoint()))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	if err := link.Send(context.Background(), ActionDisplay{Line1: "01", Line2: "OK"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	frame := panel.lastFrame(t)
	if frame[2] != cmdDisplay {
		t.Errorf("command byte = 0x%02X, want 0x%02X", frame[2], cmdDisplay)
	}
	payload := string(frame[3:])
	if len(payload) != 32 {
		t.Fatalf("payload length = %d, want 32", len(payload))
	}
	if got := payload[:16]; got != "01"+strings.Repeat(" ", 14) {
		t.Errorf("line 1 = %q, want space padded %q", got, "01")
	}
	if got := payload[16:]; got != "OK"+strings.Repeat(" ", 14) {
		t.Errorf("line 2 = %q, want space padded %q", got, "OK")
	}
}

func TestSendLampTest(t *testing.T) {
	panel := newFakePanel(t, ackOK)

	link, err := NewPanelLink(testPanelConfig(panel.endpoint()))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	if err := link.Send(context.Background(), ActionLampTest{}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	frame := panel.lastFrame(t)
	if frame[2] != cmdLampTest {
		t.Errorf("command byte = 0x%02X, want 0x%02X", frame[2], cmdLampTest)
	}
	if size := binary.BigEndian.Uint16(frame[:2]); size != 1 {
		t.Errorf("frame size = %d, want 1 (command only)", size)
	}
}

func TestSendFunctionMask(t *testing.T) {
	panel := newFakePanel(t, ackOK)

	link, err := NewPanelLink(testPanelConfig(panel.endpoint()))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	var set state.FunctionSet
	set.Set(1)
	set.Set(8)
	set.Set(13)

	if err := link.Send(context.Background(), ActionFunctionMask{Enabled: set}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	frame := panel.lastFrame(t)
	if frame[2] != cmdFunctionMask {
		t.Errorf("command byte = 0x%02X, want 0x%02X", frame[2], cmdFunctionMask)
	}

	mask := frame[3:]
	// Bit index equals function number: 1 and 13 land in byte 0/1, 8 in byte 1.
	if got := state.FunctionSetFromMask(mask); got != set {
		t.Errorf("decoded mask = %v, want %v", got.List(), set.List())
	}
	if mask[0]&0x01 != 0 {
		t.Error("bit 0 must never be set in a function mask")
	}
}

func TestSendOverlongDisplayLine(t *testing.T) {
	panel := newFakePanel(t, ackOK)

	link, err := NewPanelLink(testPanelConfig(panel.endpoint()))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	err = link.Send(context.Background(), ActionDisplay{Line1: strings.Repeat("x", 17)})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Send() error = %v, want ErrInvalidAction", err)
	}
}

func TestSendUnreachable(t *testing.T) {
	// Grab a port, then close the listener so nothing is there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	endpoint := "tcp://" + ln.Addr().String()
	ln.Close()

	link, err := NewPanelLink(testPanelConfig(endpoint))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	sendErr := link.Send(context.Background(), ActionLampTest{})
	if !errors.Is(sendErr, ErrUnreachable) {
		t.Errorf("Send() error = %v, want ErrUnreachable", sendErr)
	}
}

func TestSendProtocolError(t *testing.T) {
	panel := newFakePanel(t, 0x7F)

	link, err := NewPanelLink(testPanelConfig(panel.endpoint()))
	if err != nil {
		t.Fatalf("NewPanelLink() error = %v", err)
	}

	sendErr := link.Send(context.Background(), ActionLampTest{})
	if !errors.Is(sendErr, ErrProtocol) {
		t.Errorf("Send() error = %v, want ErrProtocol", sendErr)
	}
}

func TestNewPanelLinkInvalidEndpoint(t *testing.T) {
	_, err := NewPanelLink(testPanelConfig("ftp://panel"))
	if !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("NewPanelLink() error = %v, want ErrInvalidEndpoint", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Result
	}{
		{"nil", nil, ResultOK},
		{"protocol", ErrProtocol, ResultProtocolError},
		{"unreachable", ErrUnreachable, ResultUnreachable},
		{"invalid action", ErrInvalidAction, ResultInvalidAction},
		{"wrapped invalid action", fmt.Errorf("%w: display line 1 is 20 characters", ErrInvalidAction), ResultInvalidAction},
		{"other", errors.New("boom"), ResultUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
