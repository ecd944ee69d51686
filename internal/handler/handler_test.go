package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/infrastructure/mqtt"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

type mockBus struct {
	mu       sync.Mutex
	handlers map[string]mqtt.MessageHandler
}

func newMockBus() *mockBus {
	return &mockBus{handlers: make(map[string]mqtt.MessageHandler)}
}

func (b *mockBus) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	b.handlers[topic] = handler
	b.mu.Unlock()
	return nil
}

func (b *mockBus) deliver(t *testing.T, topic, payload string) {
	t.Helper()
	b.mu.Lock()
	wildcard, ok := b.handlers[mqtt.Topics{}.AllCommands()]
	b.mu.Unlock()
	if !ok {
		t.Fatal("handler not subscribed to command wildcard")
	}
	if err := wildcard(topic, []byte(payload)); err != nil {
		t.Fatalf("handler(%s) error = %v", topic, err)
	}
}

type mockSubmitter struct {
	mu      sync.Mutex
	actions []transport.Action
}

func (s *mockSubmitter) Submit(action transport.Action) error {
	s.mu.Lock()
	s.actions = append(s.actions, action)
	s.mu.Unlock()
	return nil
}

func (s *mockSubmitter) all() []transport.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

func testPanelConfig() config.PanelConfig {
	return config.PanelConfig{
		DisplayLines:   2,
		DisplayColumns: 16,
		DefaultDisplay: config.DisplayConfig{Line1: "01"},
	}
}

func setup(t *testing.T) (*mockBus, *state.Manager, *mockSubmitter) {
	t.Helper()
	bus := newMockBus()
	manager := state.NewManager(nil)
	actions := &mockSubmitter{}

	h := New(bus, manager, actions, testPanelConfig(), 1)
	if err := h.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return bus, manager, actions
}

func maskPayload(fns ...int) string {
	size := 0
	for _, fn := range fns {
		if fn/8+1 > size {
			size = fn/8 + 1
		}
	}
	mask := make([]byte, size)
	for _, fn := range fns {
		mask[fn/8] |= 1 << (uint(fn) % 8)
	}
	return fmt.Sprintf(`{"mask": %q}`, base64.StdEncoding.EncodeToString(mask))
}

func TestDisplayCommand(t *testing.T) {
	bus, _, actions := setup(t)

	bus.deliver(t, mqtt.Topics{}.CommandDisplay(), `{"line1": "HELLO", "line2": "WORLD"}`)

	sent := actions.all()
	if len(sent) != 1 {
		t.Fatalf("submitted %d actions, want 1", len(sent))
	}
	display, ok := sent[0].(transport.ActionDisplay)
	if !ok || display.Line1 != "HELLO" || display.Line2 != "WORLD" {
		t.Errorf("submitted %+v, want HELLO/WORLD display", sent[0])
	}
}

func TestDisplayCommandOverLength(t *testing.T) {
	bus, _, actions := setup(t)

	payload := fmt.Sprintf(`{"line1": %q}`, strings.Repeat("x", 17))
	bus.deliver(t, mqtt.Topics{}.CommandDisplay(), payload)

	if got := len(actions.all()); got != 0 {
		t.Errorf("submitted %d actions, want 0 (over-length rejected)", got)
	}
}

func TestDisplayCommandMalformed(t *testing.T) {
	bus, _, actions := setup(t)

	bus.deliver(t, mqtt.Topics{}.CommandDisplay(), `{{{`)

	if got := len(actions.all()); got != 0 {
		t.Errorf("submitted %d actions, want 0", got)
	}
}

func TestLampTestCommand(t *testing.T) {
	bus, _, actions := setup(t)

	bus.deliver(t, mqtt.Topics{}.CommandLampTest(), `{"enabled": true}`)

	sent := actions.all()
	if len(sent) != 1 {
		t.Fatalf("submitted %d actions, want 1", len(sent))
	}
	if _, ok := sent[0].(transport.ActionLampTest); !ok {
		t.Errorf("submitted %T, want ActionLampTest", sent[0])
	}
}

func TestLampTestDisableRestoresDefaultDisplay(t *testing.T) {
	bus, _, actions := setup(t)

	bus.deliver(t, mqtt.Topics{}.CommandLampTest(), `{"enabled": false}`)

	sent := actions.all()
	if len(sent) != 1 {
		t.Fatalf("submitted %d actions, want 1", len(sent))
	}
	display, ok := sent[0].(transport.ActionDisplay)
	if !ok || display.Line1 != "01" {
		t.Errorf("submitted %+v, want default display restore", sent[0])
	}
}

func TestFunctionStateCommand(t *testing.T) {
	bus, manager, actions := setup(t)
	manager.UpdatePresence(true)

	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(1, 8, 13))

	for _, fn := range []state.FunctionID{1, 8, 13} {
		if !manager.FunctionEnabled(fn) {
			t.Errorf("function %d should be enabled", fn)
		}
	}

	sent := actions.all()
	if len(sent) != 1 {
		t.Fatalf("submitted %d actions, want 1", len(sent))
	}
	mask, ok := sent[0].(transport.ActionFunctionMask)
	if !ok {
		t.Fatalf("submitted %T, want ActionFunctionMask", sent[0])
	}
	if got := mask.Enabled.List(); len(got) != 3 {
		t.Errorf("mask functions = %v, want [1 8 13]", got)
	}
}

func TestFunctionStateCommandMassDisable(t *testing.T) {
	bus, manager, actions := setup(t)
	manager.UpdatePresence(true)

	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(2, 5))
	// Empty mask disables everything that was enabled.
	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), `{"mask": ""}`)

	if !manager.Snapshot().Functions.IsEmpty() {
		t.Error("all functions should be disabled")
	}

	sent := actions.all()
	if len(sent) != 2 {
		t.Fatalf("submitted %d actions, want 2", len(sent))
	}
	mask, ok := sent[1].(transport.ActionFunctionMask)
	if !ok || !mask.Enabled.IsEmpty() {
		t.Errorf("second action = %+v, want empty function mask", sent[1])
	}
}

func TestFunctionStateCommandBitZeroIgnored(t *testing.T) {
	bus, manager, actions := setup(t)
	manager.UpdatePresence(true)

	// Only bit 0 set: function numbering starts at 1, so nothing changes.
	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(0))

	if !manager.Snapshot().Functions.IsEmpty() {
		t.Error("bit 0 must not enable any function")
	}
	if got := len(actions.all()); got != 0 {
		t.Errorf("submitted %d actions, want 0 (no change)", got)
	}
}

func TestFunctionStateCommandPanelAbsent(t *testing.T) {
	bus, manager, actions := setup(t)

	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(3))

	if manager.FunctionEnabled(3) {
		t.Error("function must not be enabled while panel is absent")
	}
	if got := len(actions.all()); got != 0 {
		t.Errorf("submitted %d actions, want 0", got)
	}
}

func TestFunctionStateCommandNoChangeNoAction(t *testing.T) {
	bus, manager, actions := setup(t)
	manager.UpdatePresence(true)

	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(7))
	before := len(actions.all())

	// Same mask again: state unchanged, no redundant hardware write.
	bus.deliver(t, mqtt.Topics{}.CommandFunctionState(), maskPayload(7))

	if got := len(actions.all()); got != before {
		t.Errorf("submitted %d actions, want %d (idempotent repeat)", got, before)
	}
}

func TestUnknownCommandTopic(t *testing.T) {
	bus, _, actions := setup(t)

	bus.deliver(t, "panelcore/command/reboot", `{}`)

	if got := len(actions.all()); got != 0 {
		t.Errorf("submitted %d actions, want 0", got)
	}
}
