package monitor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/panelworks/panel-core/internal/state"
)

// Wire payloads for the platform signal topics. Platform services publish
// these as retained JSON documents, one field each, so a late subscriber
// receives the current value on subscribe.

// presencePayload carries the physical panel presence flag.
type presencePayload struct {
	Present bool `json:"present"`
}

// bmcStatePayload carries the BMC readiness state.
type bmcStatePayload struct {
	State string `json:"state"`
}

// powerStatePayload carries the chassis power state.
type powerStatePayload struct {
	State string `json:"state"`
}

// bootProgressPayload carries the host boot progress stage.
type bootProgressPayload struct {
	Stage string `json:"stage"`
}

// enabledPayload carries a boolean policy setting (logging, auto reboot).
type enabledPayload struct {
	Enabled bool `json:"enabled"`
}

// powerPolicyPayload carries the power restore policy.
type powerPolicyPayload struct {
	Policy string `json:"policy"`
}

// pelCreatedPayload announces one new platform event log entry.
type pelCreatedPayload struct {
	ID       uint64    `json:"id"`
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}

// decodePresence parses a presence payload.
func decodePresence(payload []byte) (bool, error) {
	var p presencePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return false, fmt.Errorf("decoding presence payload: %w", err)
	}
	return p.Present, nil
}

// decodeBMCState parses and validates a BMC state payload.
func decodeBMCState(payload []byte) (state.BMCState, error) {
	var p bmcStatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decoding bmc state payload: %w", err)
	}
	s := state.BMCState(p.State)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown bmc state %q", p.State)
	}
	return s, nil
}

// decodePowerState parses and validates a power state payload.
func decodePowerState(payload []byte) (state.PowerState, error) {
	var p powerStatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decoding power state payload: %w", err)
	}
	s := state.PowerState(p.State)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown power state %q", p.State)
	}
	return s, nil
}

// decodeBootProgress parses and validates a boot progress payload.
func decodeBootProgress(payload []byte) (state.BootProgress, error) {
	var p bootProgressPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decoding boot progress payload: %w", err)
	}
	s := state.BootProgress(p.Stage)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown boot progress stage %q", p.Stage)
	}
	return s, nil
}

// decodeEnabled parses a boolean policy payload.
func decodeEnabled(payload []byte) (bool, error) {
	var p enabledPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return false, fmt.Errorf("decoding policy payload: %w", err)
	}
	return p.Enabled, nil
}

// decodePowerPolicy parses and validates a power restore policy payload.
func decodePowerPolicy(payload []byte) (state.PowerPolicy, error) {
	var p powerPolicyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", fmt.Errorf("decoding power policy payload: %w", err)
	}
	s := state.PowerPolicy(p.Policy)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown power policy %q", p.Policy)
	}
	return s, nil
}

// decodePELCreated parses a platform event log notification.
func decodePELCreated(payload []byte) (pelCreatedPayload, error) {
	var p pelCreatedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return pelCreatedPayload{}, fmt.Errorf("decoding pel payload: %w", err)
	}
	if p.Message == "" {
		return pelCreatedPayload{}, fmt.Errorf("pel payload has no message")
	}
	return p, nil
}
