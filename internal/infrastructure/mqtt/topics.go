package mqtt

import "fmt"

// Topic prefixes for the platform message bus.
//
// Platform services publish their state under "platform/..." (retained, so a
// late subscriber immediately receives the current value). panel-core's own
// topics live under "panelcore/...".
const (
	// TopicPrefixPlatform is the base for platform state and event topics.
	TopicPrefixPlatform = "platform"

	// TopicPrefixPanel is the base for panel-core topics.
	TopicPrefixPanel = "panelcore"

	// TopicPrefixSystem is the base for panel-core system topics.
	TopicPrefixSystem = "panelcore/system"
)

// Topics provides builders for panel-core MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.BootProgress()
//	// Returns: "platform/host/boot_progress"
type Topics struct{}

// =============================================================================
// Platform Signal Topics (inbound)
// =============================================================================

// PanelPresence returns the topic carrying the physical panel presence flag.
//
// Example: platform/inventory/panel/presence
func (Topics) PanelPresence() string {
	return fmt.Sprintf("%s/inventory/panel/presence", TopicPrefixPlatform)
}

// BMCState returns the topic carrying BMC readiness state.
//
// Example: platform/bmc/state
func (Topics) BMCState() string {
	return fmt.Sprintf("%s/bmc/state", TopicPrefixPlatform)
}

// PowerState returns the topic carrying chassis power state.
//
// Example: platform/chassis/power_state
func (Topics) PowerState() string {
	return fmt.Sprintf("%s/chassis/power_state", TopicPrefixPlatform)
}

// BootProgress returns the topic carrying host boot progress.
//
// Example: platform/host/boot_progress
func (Topics) BootProgress() string {
	return fmt.Sprintf("%s/host/boot_progress", TopicPrefixPlatform)
}

// LoggingSetting returns the topic carrying the platform logging policy.
//
// Example: platform/settings/logging
func (Topics) LoggingSetting() string {
	return fmt.Sprintf("%s/settings/logging", TopicPrefixPlatform)
}

// PowerRestorePolicy returns the topic carrying the power restore policy.
//
// Example: platform/settings/power_restore_policy
func (Topics) PowerRestorePolicy() string {
	return fmt.Sprintf("%s/settings/power_restore_policy", TopicPrefixPlatform)
}

// AutoRebootSetting returns the topic carrying the auto-reboot policy.
//
// Example: platform/settings/auto_reboot
func (Topics) AutoRebootSetting() string {
	return fmt.Sprintf("%s/settings/auto_reboot", TopicPrefixPlatform)
}

// PELCreated returns the topic for platform event log entry notifications.
// Unlike the state topics above this is an event stream, not retained.
//
// Example: platform/logging/pel/created
func (Topics) PELCreated() string {
	return fmt.Sprintf("%s/logging/pel/created", TopicPrefixPlatform)
}

// =============================================================================
// Command Topics (inbound, panel-core's command surface)
// =============================================================================

// CommandDisplay returns the topic for display commands.
//
// Example: panelcore/command/display
func (Topics) CommandDisplay() string {
	return fmt.Sprintf("%s/command/display", TopicPrefixPanel)
}

// CommandLampTest returns the topic for lamp test commands.
//
// Example: panelcore/command/lamp_test
func (Topics) CommandLampTest() string {
	return fmt.Sprintf("%s/command/lamp_test", TopicPrefixPanel)
}

// CommandFunctionState returns the topic for function enable/disable commands.
//
// Example: panelcore/command/function_state
func (Topics) CommandFunctionState() string {
	return fmt.Sprintf("%s/command/function_state", TopicPrefixPanel)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: panelcore/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", TopicPrefixPanel)
}

// =============================================================================
// Outbound Topics
// =============================================================================

// PanelState returns the topic where panel-core publishes its authoritative
// state snapshot (retained).
//
// Example: panelcore/state
func (Topics) PanelState() string {
	return fmt.Sprintf("%s/state", TopicPrefixPanel)
}

// SystemStatus returns the online/offline status topic (also used for LWT).
//
// Example: panelcore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
