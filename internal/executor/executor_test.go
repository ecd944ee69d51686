package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panelworks/panel-core/internal/transport"
)

// mockTransport records every action it is asked to send.
type mockTransport struct {
	mu      sync.Mutex
	sent    []transport.Action
	sendErr error
	errOnce bool // return sendErr only for the first send
}

func (m *mockTransport) Send(_ context.Context, action transport.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, action)
	if m.sendErr != nil {
		err := m.sendErr
		if m.errOnce {
			m.sendErr = nil
		}
		return err
	}
	return nil
}

func (m *mockTransport) sentActions() []transport.Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.Action, len(m.sent))
	copy(out, m.sent)
	return out
}

// fakePresence is a toggleable presence source.
type fakePresence struct {
	present atomic.Bool
}

func (p *fakePresence) Presence() bool { return p.present.Load() }

// mockRecorder collects dispatch outcomes.
type mockRecorder struct {
	mu       sync.Mutex
	outcomes []string // "kind:result"
}

func (r *mockRecorder) RecordAction(kind, result string) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, kind+":"+result)
	r.mu.Unlock()
}

func (r *mockRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

func TestSubmitDispatchesInOrder(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}
	presence.present.Store(true)

	exec := New(mt, presence, 16)
	exec.Start(context.Background())

	const n = 10
	for i := 0; i < n; i++ {
		action := transport.ActionDisplay{Line1: fmt.Sprintf("%02d", i)}
		if err := exec.Submit(action); err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
	}
	exec.Stop()

	sent := mt.sentActions()
	if len(sent) != n {
		t.Fatalf("sent %d actions, want %d", len(sent), n)
	}
	for i, a := range sent {
		display, ok := a.(transport.ActionDisplay)
		if !ok {
			t.Fatalf("sent[%d] is %T, want ActionDisplay", i, a)
		}
		if want := fmt.Sprintf("%02d", i); display.Line1 != want {
			t.Errorf("sent[%d].Line1 = %q, want %q (order violated)", i, display.Line1, want)
		}
	}
}

func TestDropOnAbsence(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}
	rec := &mockRecorder{}

	exec := New(mt, presence, 16)
	exec.SetRecorder(rec)

	// Queue while the panel is notionally present, then lose it before the
	// worker runs: the presence re-check happens at dispatch time.
	presence.present.Store(true)
	if err := exec.Submit(transport.ActionLampTest{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	presence.present.Store(false)

	exec.Start(context.Background())
	exec.Stop()

	if got := mt.sentActions(); len(got) != 0 {
		t.Errorf("transport received %d actions, want 0 (panel absent)", len(got))
	}
	outcomes := rec.all()
	if len(outcomes) != 1 || outcomes[0] != "lamp_test:dropped" {
		t.Errorf("outcomes = %v, want [lamp_test:dropped]", outcomes)
	}
}

func TestSubmitQueueFull(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}
	presence.present.Store(true)

	// Worker never started, so the queue only empties on Stop.
	exec := New(mt, presence, 2)

	if err := exec.Submit(transport.ActionLampTest{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := exec.Submit(transport.ActionLampTest{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := exec.Submit(transport.ActionLampTest{}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Submit() error = %v, want ErrQueueFull", err)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}

	exec := New(mt, presence, 4)
	exec.Start(context.Background())
	exec.Stop()

	if err := exec.Submit(transport.ActionLampTest{}); !errors.Is(err, ErrStopped) {
		t.Errorf("Submit() error = %v, want ErrStopped", err)
	}
}

func TestFailureIsolation(t *testing.T) {
	mt := &mockTransport{sendErr: transport.ErrUnreachable, errOnce: true}
	presence := &fakePresence{}
	presence.present.Store(true)
	rec := &mockRecorder{}

	exec := New(mt, presence, 4)
	exec.SetRecorder(rec)
	exec.Start(context.Background())

	if err := exec.Submit(transport.ActionLampTest{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := exec.Submit(transport.ActionDisplay{Line1: "OK"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	exec.Stop()

	// Both actions reached the transport despite the first one failing.
	if got := mt.sentActions(); len(got) != 2 {
		t.Fatalf("transport received %d actions, want 2", len(got))
	}
	outcomes := rec.all()
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %v, want 2 entries", outcomes)
	}
	if outcomes[0] != "lamp_test:unreachable" {
		t.Errorf("outcomes[0] = %q, want lamp_test:unreachable", outcomes[0])
	}
	if outcomes[1] != "display:ok" {
		t.Errorf("outcomes[1] = %q, want display:ok", outcomes[1])
	}
}

func TestStopDrainsQueue(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}
	presence.present.Store(true)

	exec := New(mt, presence, 8)
	for i := 0; i < 5; i++ {
		if err := exec.Submit(transport.ActionDisplay{Line1: fmt.Sprintf("%d", i)}); err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
	}

	// Start and immediately stop: everything queued must still go out.
	exec.Start(context.Background())
	exec.Stop()

	if got := mt.sentActions(); len(got) != 5 {
		t.Errorf("transport received %d actions, want 5 (queue drained on stop)", len(got))
	}
}

func TestStopReclaimsUnconsumedActions(t *testing.T) {
	mt := &mockTransport{}
	presence := &fakePresence{}
	presence.present.Store(true)
	rec := &mockRecorder{}

	// Never start the worker: the queued actions have no consumer, which
	// is the state a Submit racing with shutdown can leave behind.
	exec := New(mt, presence, 8)
	exec.SetRecorder(rec)

	if err := exec.Submit(transport.ActionLampTest{}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := exec.Submit(transport.ActionDisplay{Line1: "PEL"}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	exec.Stop()

	if got := mt.sentActions(); len(got) != 0 {
		t.Errorf("transport received %d actions, want 0 (no worker)", len(got))
	}
	outcomes := rec.all()
	want := []string{"lamp_test:dropped", "display:dropped"}
	if len(outcomes) != len(want) {
		t.Fatalf("outcomes = %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Errorf("outcomes[%d] = %q, want %q", i, outcomes[i], want[i])
		}
	}
}

func TestStopIsIdempotent(t *testing.T) {
	exec := New(&mockTransport{}, &fakePresence{}, 4)
	exec.Start(context.Background())
	exec.Stop()
	exec.Stop()
}
