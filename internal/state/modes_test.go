package state

import (
	"errors"
	"testing"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
)

func boolPtr(b bool) *bool { return &b }

func TestDefaultModeTable(t *testing.T) {
	table := DefaultModeTable()

	tests := []struct {
		name        string
		logging     bool
		powerPolicy PowerPolicy
		reboot      bool
		want        OperatingMode
	}{
		{"all defaults", true, PowerPolicyRestore, false, ModeNormal},
		{"reboot wins", true, PowerPolicyRestore, true, ModeSafe},
		{"reboot wins over logging", false, PowerPolicyRestore, true, ModeSafe},
		{"logging disabled", false, PowerPolicyRestore, false, ModeManufacturing},
		{"power policy irrelevant", true, PowerPolicyAlwaysOff, false, ModeNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Lookup(tt.logging, tt.powerPolicy, tt.reboot)
			if got != tt.want {
				t.Errorf("Lookup(%v, %q, %v) = %q, want %q",
					tt.logging, tt.powerPolicy, tt.reboot, got, tt.want)
			}
		})
	}
}

func TestLookup_Deterministic(t *testing.T) {
	table := DefaultModeTable()

	// Same triple, same answer, every time.
	for i := 0; i < 10; i++ {
		if got := table.Lookup(false, PowerPolicyAlwaysOn, false); got != ModeManufacturing {
			t.Fatalf("iteration %d: Lookup() = %q, want %q", i, got, ModeManufacturing)
		}
	}
}

func TestNewModeTable_EmptyConfigUsesDefaults(t *testing.T) {
	table, err := NewModeTable(config.ModesConfig{})
	if err != nil {
		t.Fatalf("NewModeTable() error = %v", err)
	}
	if got := table.Lookup(true, PowerPolicyRestore, true); got != ModeSafe {
		t.Errorf("Lookup() = %q, want %q", got, ModeSafe)
	}
}

func TestNewModeTable_CustomRules(t *testing.T) {
	cfg := config.ModesConfig{
		Rules: []config.ModeRule{
			{PowerPolicy: "always_off", Mode: "safe"},
			{Logging: boolPtr(false), PowerPolicy: "*", Mode: "manufacturing"},
		},
		Default: "normal",
	}

	table, err := NewModeTable(cfg)
	if err != nil {
		t.Fatalf("NewModeTable() error = %v", err)
	}

	if got := table.Lookup(true, PowerPolicyAlwaysOff, false); got != ModeSafe {
		t.Errorf("always_off rule: Lookup() = %q, want %q", got, ModeSafe)
	}
	if got := table.Lookup(false, PowerPolicyRestore, false); got != ModeManufacturing {
		t.Errorf("logging rule: Lookup() = %q, want %q", got, ModeManufacturing)
	}
	if got := table.Lookup(true, PowerPolicyRestore, true); got != ModeNormal {
		t.Errorf("fallthrough: Lookup() = %q, want %q", got, ModeNormal)
	}
}

func TestNewModeTable_FirstMatchWins(t *testing.T) {
	cfg := config.ModesConfig{
		Rules: []config.ModeRule{
			{Reboot: boolPtr(true), Mode: "safe"},
			{Reboot: boolPtr(true), Mode: "manufacturing"}, // shadowed
		},
	}

	table, err := NewModeTable(cfg)
	if err != nil {
		t.Fatalf("NewModeTable() error = %v", err)
	}
	if got := table.Lookup(true, PowerPolicyRestore, true); got != ModeSafe {
		t.Errorf("Lookup() = %q, want %q (first matching rule)", got, ModeSafe)
	}
}

func TestNewModeTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ModesConfig
		wantErr error
	}{
		{
			name:    "unknown rule mode",
			cfg:     config.ModesConfig{Rules: []config.ModeRule{{Mode: "turbo"}}},
			wantErr: ErrUnknownMode,
		},
		{
			name:    "unknown default mode",
			cfg:     config.ModesConfig{Default: "diagnostic"},
			wantErr: ErrUnknownMode,
		},
		{
			name: "unknown power policy",
			cfg: config.ModesConfig{
				Rules: []config.ModeRule{{PowerPolicy: "sometimes_on", Mode: "safe"}},
			},
			wantErr: ErrUnknownPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModeTable(tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewModeTable() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
