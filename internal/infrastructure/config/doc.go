// Package config handles loading and validating panel-core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The operating-mode derivation table (modes:) lives here deliberately:
// the mapping from the policy triple to an operating mode is deployment
// policy, not mechanism, so it ships as data.
//
// Security Considerations:
//   - Sensitive values (broker credentials, tokens) should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Panel.Endpoint)
package config
