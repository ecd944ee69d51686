// Package state holds the authoritative panel state for panel-core.
//
// The Manager owns the single PanelState snapshot: raw platform signals
// (presence, BMC state, chassis power, boot progress, the three policy
// settings) and the derived operating mode. Signal monitors write exactly
// the field they own; the derived mode is recomputed internally from the
// policy triple via a table lookup (ModeTable) and can never be written
// directly.
//
// # Consistency model
//
// Each field update is atomic: readers never observe a torn value for a
// single field. Cross-field reads are weakly consistent; use Snapshot()
// when a coherent multi-field view is needed.
//
// # Presence policy
//
// Losing presence clears every enabled panel function. Regaining presence
// does not restore them: re-enabling is an explicit caller decision, so a
// replugged panel never silently resumes previously armed functions.
package state
