package state

import (
	"fmt"

	"github.com/panelworks/panel-core/internal/infrastructure/config"
)

// ModeTable maps the policy triple (logging, power policy, reboot) to an
// operating mode. It is the single source of truth for mode derivation;
// signal monitors must never infer modes themselves.
//
// Rules are evaluated in order, first match wins. A nil boolean or a "*"
// power policy in a rule is a wildcard. Combinations no rule matches
// resolve to the table's default mode.
type ModeTable struct {
	rules []modeRule
	def   OperatingMode
}

type modeRule struct {
	logging     *bool
	powerPolicy PowerPolicy // empty means wildcard
	reboot      *bool
	mode        OperatingMode
}

// DefaultModeTable returns the built-in derivation table, used when the
// modes section of the config is empty:
//
//	reboot policy set            -> safe
//	logging disabled             -> manufacturing
//	anything else                -> normal
func DefaultModeTable() *ModeTable {
	yes := true
	no := false
	return &ModeTable{
		rules: []modeRule{
			{reboot: &yes, mode: ModeSafe},
			{logging: &no, mode: ModeManufacturing},
		},
		def: ModeNormal,
	}
}

// NewModeTable builds a ModeTable from configuration. An empty config
// yields the built-in default table.
func NewModeTable(cfg config.ModesConfig) (*ModeTable, error) {
	if len(cfg.Rules) == 0 && cfg.Default == "" {
		return DefaultModeTable(), nil
	}

	t := &ModeTable{def: ModeNormal}
	if cfg.Default != "" {
		def := OperatingMode(cfg.Default)
		if !def.IsValid() {
			return nil, fmt.Errorf("%w: default %q", ErrUnknownMode, cfg.Default)
		}
		t.def = def
	}

	for i, rc := range cfg.Rules {
		mode := OperatingMode(rc.Mode)
		if !mode.IsValid() {
			return nil, fmt.Errorf("%w: rules[%d] mode %q", ErrUnknownMode, i, rc.Mode)
		}

		rule := modeRule{
			logging: rc.Logging,
			reboot:  rc.Reboot,
			mode:    mode,
		}

		if rc.PowerPolicy != "" && rc.PowerPolicy != "*" {
			pp := PowerPolicy(rc.PowerPolicy)
			if !pp.IsValid() {
				return nil, fmt.Errorf("%w: rules[%d] power policy %q", ErrUnknownPolicy, i, rc.PowerPolicy)
			}
			rule.powerPolicy = pp
		}

		t.rules = append(t.rules, rule)
	}

	return t, nil
}

// Lookup derives the operating mode for the given policy triple.
// Lookup is a pure function of its inputs: for any triple it always
// returns the same mode, regardless of the order updates arrived in.
func (t *ModeTable) Lookup(logging bool, powerPolicy PowerPolicy, reboot bool) OperatingMode {
	for _, r := range t.rules {
		if r.logging != nil && *r.logging != logging {
			continue
		}
		if r.powerPolicy != "" && r.powerPolicy != powerPolicy {
			continue
		}
		if r.reboot != nil && *r.reboot != reboot {
			continue
		}
		return r.mode
	}
	return t.def
}
