package monitor

import (
	"github.com/panelworks/panel-core/internal/infrastructure/config"
	"github.com/panelworks/panel-core/internal/state"
	"github.com/panelworks/panel-core/internal/transport"
)

// bootStageText maps each boot stage to its panel display line.
var bootStageText = map[state.BootProgress]string{
	state.BootPrimaryProcInit:    "PROC INIT",
	state.BootMemoryInit:         "MEM INIT",
	state.BootSecondaryProcInit:  "SEC PROC INIT",
	state.BootPCIInit:            "PCI INIT",
	state.BootSystemInitComplete: "SYS INIT DONE",
	state.BootOSStart:            "OS START",
}

// BootProgressReactor renders boot progress on the panel.
//
// It subscribes to PanelState changes rather than the bus, so it sees
// exactly the deduplicated stage transitions the manager accepted. When
// the OS reports running (or the stage returns to unspecified) the
// default display takes over.
type BootProgressReactor struct {
	actions  Submitter
	defaults config.DisplayConfig
	logger   Logger
}

// NewBootProgressReactor creates the boot progress display reactor and
// registers it with the manager.
func NewBootProgressReactor(manager *state.Manager, actions Submitter, defaults config.DisplayConfig) *BootProgressReactor {
	r := &BootProgressReactor{
		actions:  actions,
		defaults: defaults,
		logger:   noopLogger{},
	}
	manager.Subscribe(r.onStateChange)
	return r
}

// SetLogger sets the logger for the reactor.
func (r *BootProgressReactor) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

func (r *BootProgressReactor) onStateChange(ev state.Event) {
	if ev.Field != state.FieldBootProgress {
		return
	}

	var action transport.ActionDisplay
	if text, ok := bootStageText[ev.State.BootProgress]; ok {
		action = transport.ActionDisplay{Line1: "BOOT", Line2: text}
	} else {
		action = transport.ActionDisplay{Line1: r.defaults.Line1, Line2: r.defaults.Line2}
	}

	if err := r.actions.Submit(action); err != nil {
		r.logger.Warn("boot progress display not queued",
			"stage", ev.State.BootProgress,
			"error", err,
		)
	}
}
