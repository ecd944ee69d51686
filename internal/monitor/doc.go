// Package monitor hosts the signal adapters that translate platform bus
// messages into PanelState updates and hardware actions.
//
// Each adapter owns the fields it writes, so no two adapters ever write
// the same part of PanelState:
//
//   - PresenceMonitor: panel presence, plus the default display when a
//     panel is reattached.
//   - SystemStatusMonitor: BMC state, power state, boot progress, and the
//     three policy settings. It performs an initial read of all six
//     channels through the broker's retained messages, then follows change
//     notifications.
//   - PELMonitor: platform event log notifications. Entries are persisted
//     first; the display is only driven when the configured panel function
//     is enabled at the moment the notification arrives.
//   - BootProgressReactor: listens to PanelState changes (not the bus) and
//     renders boot progress on the panel.
//   - StatePublisher: mirrors every PanelState change to the retained
//     panel state topic for external observers.
//
// Adapters never crash on malformed input: a payload that fails to decode
// is logged and discarded, and the previous state stands.
package monitor
