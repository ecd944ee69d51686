// Package handler exposes the outward command surface of panel-core.
//
// Commands arrive on the panelcore/command/+ topics: render a display,
// trigger or end a lamp test, and apply a function-state bitmask. Every
// command is validated against the current PanelState before any hardware
// action is queued; a rejected command is logged and dropped without
// disturbing existing state, and never fails the daemon.
package handler
