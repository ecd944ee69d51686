package state

import "fmt"

// BMCState is the last-known readiness state of the BMC.
type BMCState string

// BMC readiness states.
const (
	BMCInit     BMCState = "init"
	BMCReady    BMCState = "ready"
	BMCQuiesced BMCState = "quiesced"
	BMCNotReady BMCState = "not_ready"
)

// IsValid reports whether s is a known BMC state.
func (s BMCState) IsValid() bool {
	switch s {
	case BMCInit, BMCReady, BMCQuiesced, BMCNotReady:
		return true
	}
	return false
}

// PowerState is the chassis power state.
type PowerState string

// Chassis power states.
const (
	PowerOff              PowerState = "off"
	PowerOn               PowerState = "on"
	PowerTransitioningOn  PowerState = "transitioning_on"
	PowerTransitioningOff PowerState = "transitioning_off"
)

// IsValid reports whether s is a known power state.
func (s PowerState) IsValid() bool {
	switch s {
	case PowerOff, PowerOn, PowerTransitioningOn, PowerTransitioningOff:
		return true
	}
	return false
}

// BootProgress is one stage of the host boot sequence. Stages are ordered;
// Order() gives the position for comparisons.
type BootProgress string

// Host boot progress stages, in boot order.
const (
	BootUnspecified        BootProgress = "unspecified"
	BootPrimaryProcInit    BootProgress = "primary_proc_init"
	BootMemoryInit         BootProgress = "memory_init"
	BootSecondaryProcInit  BootProgress = "secondary_proc_init"
	BootPCIInit            BootProgress = "pci_init"
	BootSystemInitComplete BootProgress = "system_init_complete"
	BootOSStart            BootProgress = "os_start"
	BootOSRunning          BootProgress = "os_running"
)

// bootOrder maps each stage to its position in the boot sequence.
var bootOrder = map[BootProgress]int{
	BootUnspecified:        0,
	BootPrimaryProcInit:    1,
	BootMemoryInit:         2,
	BootSecondaryProcInit:  3,
	BootPCIInit:            4,
	BootSystemInitComplete: 5,
	BootOSStart:            6,
	BootOSRunning:          7,
}

// IsValid reports whether s is a known boot progress stage.
func (s BootProgress) IsValid() bool {
	_, ok := bootOrder[s]
	return ok
}

// Order returns the stage's position in the boot sequence, or -1 if unknown.
func (s BootProgress) Order() int {
	if n, ok := bootOrder[s]; ok {
		return n
	}
	return -1
}

// PowerPolicy is the platform power restore policy.
type PowerPolicy string

// Power restore policies.
const (
	PowerPolicyAlwaysOn  PowerPolicy = "always_on"
	PowerPolicyAlwaysOff PowerPolicy = "always_off"
	PowerPolicyRestore   PowerPolicy = "restore"
)

// IsValid reports whether p is a known power policy.
func (p PowerPolicy) IsValid() bool {
	switch p {
	case PowerPolicyAlwaysOn, PowerPolicyAlwaysOff, PowerPolicyRestore:
		return true
	}
	return false
}

// OperatingMode is the derived classification of system behaviour. It is
// computed exclusively by the Manager from the policy triple; nothing else
// may write it.
type OperatingMode string

// Operating modes.
const (
	ModeNormal        OperatingMode = "normal"
	ModeManufacturing OperatingMode = "manufacturing"
	ModeSafe          OperatingMode = "safe"
)

// IsValid reports whether m is a known operating mode.
func (m OperatingMode) IsValid() bool {
	switch m {
	case ModeNormal, ModeManufacturing, ModeSafe:
		return true
	}
	return false
}

// FunctionID identifies one logical panel function. Functions are numbered
// from 1; 0 is never a valid function.
type FunctionID uint8

// MaxFunction is the highest panel function number.
// The function bitset is sized to hold functions 1..MaxFunction.
const MaxFunction FunctionID = 128

// functionWords is the number of 64-bit words in a FunctionSet.
const functionWords = int(MaxFunction) / 64

// FunctionSet is a fixed-width bitset of enabled panel functions.
// The zero value is the empty set.
type FunctionSet [functionWords]uint64

// IsValidFunction reports whether fn is within the supported range.
func IsValidFunction(fn FunctionID) bool {
	return fn >= 1 && fn <= MaxFunction
}

// Set adds fn to the set. Out-of-range functions are ignored.
func (s *FunctionSet) Set(fn FunctionID) {
	if !IsValidFunction(fn) {
		return
	}
	bit := uint(fn - 1)
	s[bit/64] |= 1 << (bit % 64)
}

// Clear removes fn from the set.
func (s *FunctionSet) Clear(fn FunctionID) {
	if !IsValidFunction(fn) {
		return
	}
	bit := uint(fn - 1)
	s[bit/64] &^= 1 << (bit % 64)
}

// Has reports whether fn is in the set.
func (s FunctionSet) Has(fn FunctionID) bool {
	if !IsValidFunction(fn) {
		return false
	}
	bit := uint(fn - 1)
	return s[bit/64]&(1<<(bit%64)) != 0
}

// IsEmpty reports whether no function is enabled.
func (s FunctionSet) IsEmpty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// List returns the enabled functions in ascending order.
func (s FunctionSet) List() []FunctionID {
	var fns []FunctionID
	for fn := FunctionID(1); ; fn++ {
		if s.Has(fn) {
			fns = append(fns, fn)
		}
		if fn == MaxFunction {
			break
		}
	}
	return fns
}

// FunctionSetFromMask builds a FunctionSet from a byte-array bitmask where
// bit index equals the function number (bit 0 of byte 0 is unused because
// function numbering starts at 1). This is the wire format of the
// function-state command.
func FunctionSetFromMask(mask []byte) FunctionSet {
	var set FunctionSet
	for bitIndex := 1; bitIndex < len(mask)*8; bitIndex++ {
		byteIndex := bitIndex / 8
		bitInByte := uint(bitIndex % 8)
		if mask[byteIndex]&(1<<bitInByte) != 0 {
			set.Set(FunctionID(bitIndex)) //nolint:gosec // bounded by Set's range check
		}
	}
	return set
}

// PanelState is the authoritative snapshot of every tracked signal and every
// derived mode. It is owned by the Manager; all mutation goes through the
// Manager's API.
type PanelState struct {
	// Presence reports whether the physical panel is attached and responding.
	Presence bool `json:"presence"`

	// Functions is the set of currently enabled logical panel functions.
	Functions FunctionSet `json:"-"`

	// EnabledFunctions mirrors Functions for JSON consumers.
	EnabledFunctions []FunctionID `json:"enabled_functions"`

	BMC          BMCState     `json:"bmc_state"`
	Power        PowerState   `json:"power_state"`
	BootProgress BootProgress `json:"boot_progress"`

	LoggingPolicy bool        `json:"logging_policy"`
	PowerPolicy   PowerPolicy `json:"power_policy"`
	RebootPolicy  bool        `json:"reboot_policy"`

	// OperatingMode is derived from the policy triple; never set directly.
	OperatingMode OperatingMode `json:"operating_mode"`
}

// Field identifies which part of PanelState an Event refers to.
type Field string

// PanelState fields reported in change events.
const (
	FieldPresence      Field = "presence"
	FieldFunctions     Field = "functions"
	FieldBMC           Field = "bmc_state"
	FieldPower         Field = "power_state"
	FieldBootProgress  Field = "boot_progress"
	FieldPolicy        Field = "policy"
	FieldOperatingMode Field = "operating_mode"
)

// Event describes one meaningful PanelState change. State is a complete
// snapshot taken after the change was applied.
type Event struct {
	Field Field
	State PanelState
}

func (e Event) String() string {
	return fmt.Sprintf("state change: %s", e.Field)
}
