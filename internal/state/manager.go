package state

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Manager.
// This allows different logging implementations to be used.
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

// Subscriber receives PanelState change events. Callbacks run synchronously
// on the updating goroutine after the mutation has been applied and the
// lock released; they must not block for extended periods.
type Subscriber func(Event)

// Manager is the authoritative store for PanelState.
//
// Every tracked signal and every derived mode lives here; signal monitors
// and the command handler mutate state only through this API. Each update
// replaces one field atomically: concurrent readers always observe a fully
// written value for any single field, though two fields may be observed at
// different logical times.
//
// All public methods are thread-safe.
type Manager struct {
	mu    sync.RWMutex
	st    PanelState
	modes *ModeTable

	subMu  sync.RWMutex
	subs   []Subscriber
	logger Logger
}

// NewManager creates a panel state manager using the given mode table.
// A nil table falls back to the built-in default derivation.
func NewManager(modes *ModeTable) *Manager {
	if modes == nil {
		modes = DefaultModeTable()
	}
	m := &Manager{
		modes:  modes,
		logger: noopLogger{},
	}
	m.st.BootProgress = BootUnspecified
	m.st.Power = PowerOff
	m.st.BMC = BMCInit
	m.st.PowerPolicy = PowerPolicyRestore
	m.st.LoggingPolicy = true
	m.st.OperatingMode = modes.Lookup(m.st.LoggingPolicy, m.st.PowerPolicy, m.st.RebootPolicy)
	return m
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	m.logger = logger
}

// Subscribe registers a callback for PanelState change events.
// Subscribers cannot be removed; register for the process lifetime.
func (m *Manager) Subscribe(sub Subscriber) {
	m.subMu.Lock()
	m.subs = append(m.subs, sub)
	m.subMu.Unlock()
}

// notify delivers an event for field with the given post-change snapshot.
func (m *Manager) notify(field Field, snapshot PanelState) {
	m.subMu.RLock()
	subs := make([]Subscriber, len(m.subs))
	copy(subs, m.subs)
	m.subMu.RUnlock()

	ev := Event{Field: field, State: snapshot}
	for _, sub := range subs {
		sub(ev)
	}
}

// snapshotLocked returns a copy of the current state. Caller must hold mu.
func (m *Manager) snapshotLocked() PanelState {
	st := m.st
	st.EnabledFunctions = st.Functions.List()
	return st
}

// Snapshot returns a copy of the full current PanelState.
func (m *Manager) Snapshot() PanelState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Presence reports whether the physical panel is currently present.
func (m *Manager) Presence() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Presence
}

// OperatingMode returns the current derived operating mode.
func (m *Manager) OperatingMode() OperatingMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.OperatingMode
}

// BootProgress returns the current boot progress stage.
func (m *Manager) BootProgress() BootProgress {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.BootProgress
}

// FunctionEnabled reports whether the given panel function is enabled.
func (m *Manager) FunctionEnabled(fn FunctionID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.Functions.Has(fn)
}

// UpdatePresence sets the panel presence flag.
//
// On a true→false transition every enabled function is cleared, so no
// further hardware actions are issued on behalf of a vanished panel. On
// false→true the function set stays empty: functions are never silently
// re-armed, a caller must explicitly re-enable them.
func (m *Manager) UpdatePresence(present bool) {
	m.mu.Lock()
	if m.st.Presence == present {
		m.mu.Unlock()
		return
	}

	m.st.Presence = present
	functionsCleared := false
	if !present && !m.st.Functions.IsEmpty() {
		m.st.Functions = FunctionSet{}
		functionsCleared = true
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Info("panel presence changed", "present", present)
	m.notify(FieldPresence, snapshot)
	if functionsCleared {
		m.notify(FieldFunctions, snapshot)
	}
}

// UpdateBMCState replaces the BMC readiness state.
func (m *Manager) UpdateBMCState(s BMCState) {
	m.mu.Lock()
	if m.st.BMC == s {
		m.mu.Unlock()
		return
	}
	m.st.BMC = s
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("bmc state updated", "state", s)
	m.notify(FieldBMC, snapshot)
}

// UpdatePowerState replaces the chassis power state.
func (m *Manager) UpdatePowerState(s PowerState) {
	m.mu.Lock()
	if m.st.Power == s {
		m.mu.Unlock()
		return
	}
	m.st.Power = s
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("power state updated", "state", s)
	m.notify(FieldPower, snapshot)
}

// UpdateBootProgress replaces the host boot progress stage.
func (m *Manager) UpdateBootProgress(s BootProgress) {
	m.mu.Lock()
	if m.st.BootProgress == s {
		m.mu.Unlock()
		return
	}
	m.st.BootProgress = s
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("boot progress updated", "stage", s)
	m.notify(FieldBootProgress, snapshot)
}

// UpdateLoggingPolicy replaces the logging policy and rederives the
// operating mode.
func (m *Manager) UpdateLoggingPolicy(enabled bool) {
	m.updatePolicy(func(st *PanelState) bool {
		changed := st.LoggingPolicy != enabled
		st.LoggingPolicy = enabled
		return changed
	})
}

// UpdatePowerPolicy replaces the power restore policy and rederives the
// operating mode.
func (m *Manager) UpdatePowerPolicy(p PowerPolicy) {
	m.updatePolicy(func(st *PanelState) bool {
		changed := st.PowerPolicy != p
		st.PowerPolicy = p
		return changed
	})
}

// UpdateRebootPolicy replaces the auto-reboot policy and rederives the
// operating mode.
func (m *Manager) UpdateRebootPolicy(enabled bool) {
	m.updatePolicy(func(st *PanelState) bool {
		changed := st.RebootPolicy != enabled
		st.RebootPolicy = enabled
		return changed
	})
}

// updatePolicy applies one policy mutation and unconditionally recomputes
// the operating mode from the resulting triple. Recomputation is idempotent
// and cheap, so no dirty tracking is needed for correctness.
func (m *Manager) updatePolicy(apply func(*PanelState) bool) {
	m.mu.Lock()
	policyChanged := apply(&m.st)
	newMode := m.modes.Lookup(m.st.LoggingPolicy, m.st.PowerPolicy, m.st.RebootPolicy)
	modeChanged := m.st.OperatingMode != newMode
	m.st.OperatingMode = newMode
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if policyChanged {
		m.notify(FieldPolicy, snapshot)
	}
	if modeChanged {
		m.logger.Info("operating mode changed", "mode", newMode)
		m.notify(FieldOperatingMode, snapshot)
	}
}

// SetFunctionEnabled enables or disables one logical panel function.
//
// The call is rejected with ErrPanelAbsent while the panel is not present:
// function state is only meaningful against attached hardware, and a
// reattached panel must be re-armed explicitly.
func (m *Manager) SetFunctionEnabled(fn FunctionID, enabled bool) error {
	if !IsValidFunction(fn) {
		return fmt.Errorf("%w: %d", ErrInvalidFunction, fn)
	}

	m.mu.Lock()
	if !m.st.Presence {
		m.mu.Unlock()
		return ErrPanelAbsent
	}

	if m.st.Functions.Has(fn) == enabled {
		m.mu.Unlock()
		return nil
	}

	if enabled {
		m.st.Functions.Set(fn)
	} else {
		m.st.Functions.Clear(fn)
	}
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("function state changed", "function", fn, "enabled", enabled)
	m.notify(FieldFunctions, snapshot)
	return nil
}
