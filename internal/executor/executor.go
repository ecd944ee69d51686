package executor

import (
	"context"
	"sync"

	"github.com/panelworks/panel-core/internal/transport"
)

// resultDropped is the dispatch outcome recorded for actions discarded
// before reaching the transport.
const resultDropped = "dropped"

// Logger defines the logging interface for the executor.
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

// PresenceSource reports whether the physical panel is currently present.
// The worker consults it immediately before every send.
type PresenceSource interface {
	Presence() bool
}

// Recorder receives one dispatch outcome per consumed action. Implemented
// by the telemetry writer; a nil recorder disables recording.
type Recorder interface {
	RecordAction(kind, result string)
}

// Executor owns the single-consumer action queue.
type Executor struct {
	transport transport.Transport
	presence  PresenceSource

	queue chan transport.Action
	done  chan struct{}

	stopOnce sync.Once
	wg       sync.WaitGroup

	logger   Logger
	recorder Recorder
}

// New creates an executor with the given queue depth.
func New(t transport.Transport, presence PresenceSource, queueSize int) *Executor {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Executor{
		transport: t,
		presence:  presence,
		queue:     make(chan transport.Action, queueSize),
		done:      make(chan struct{}),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the executor.
func (e *Executor) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	e.logger = logger
}

// SetRecorder sets the dispatch outcome recorder.
func (e *Executor) SetRecorder(r Recorder) {
	e.recorder = r
}

// Start launches the worker goroutine. ctx cancellation aborts any
// in-flight send; queued actions are still drained on Stop.
func (e *Executor) Start(ctx context.Context) {
	e.wg.Add(1)
	go e.worker(ctx)
}

// Submit enqueues one action without blocking. Returns ErrQueueFull when
// the queue has no room and ErrStopped after shutdown has begun; in both
// cases the action is discarded.
func (e *Executor) Submit(action transport.Action) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}

	select {
	case e.queue <- action:
	default:
		e.logger.Warn("action queue full, dropping", "kind", action.Kind())
		e.record(action.Kind(), resultDropped)
		return ErrQueueFull
	}

	// Shutdown may have begun between the done check and the enqueue,
	// in which case the worker's drain can miss the action. Re-check and
	// reclaim one queued action so nothing sits in the queue unrecorded.
	select {
	case <-e.done:
		select {
		case a := <-e.queue:
			e.logger.Warn("action abandoned at shutdown", "kind", a.Kind())
			e.record(a.Kind(), resultDropped)
		default:
		}
		return ErrStopped
	default:
		return nil
	}
}

// Stop signals shutdown and waits for the worker to drain the queue.
// Safe to call multiple times.
func (e *Executor) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()

	// A Submit racing with shutdown can land an action in the queue
	// after the worker's drain has finished. Sweep those out so every
	// accepted action still gets an explicit outcome.
	for {
		select {
		case action := <-e.queue:
			e.logger.Warn("action abandoned at shutdown", "kind", action.Kind())
			e.record(action.Kind(), resultDropped)
		default:
			return
		}
	}
}

func (e *Executor) worker(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			e.drain(ctx)
			return
		case action := <-e.queue:
			e.dispatch(ctx, action)
		}
	}
}

// drain consumes whatever is still buffered at shutdown so no accepted
// action is silently lost.
func (e *Executor) drain(ctx context.Context) {
	for {
		select {
		case action := <-e.queue:
			e.dispatch(ctx, action)
		default:
			return
		}
	}
}

// dispatch sends one action, applying the presence gate. Failures are
// logged and isolated; the worker always moves on to the next action.
func (e *Executor) dispatch(ctx context.Context, action transport.Action) {
	if !e.presence.Presence() {
		e.logger.Debug("panel absent, dropping action", "kind", action.Kind())
		e.record(action.Kind(), resultDropped)
		return
	}

	err := e.transport.Send(ctx, action)
	result := transport.Classify(err)
	if err != nil {
		e.logger.Warn("action send failed",
			"kind", action.Kind(),
			"result", string(result),
			"error", err,
		)
	}
	e.record(action.Kind(), string(result))
}

func (e *Executor) record(kind, result string) {
	if e.recorder != nil {
		e.recorder.RecordAction(kind, result)
	}
}
