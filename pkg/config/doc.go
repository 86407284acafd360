// Package config defines AgentGuard's configuration model and loading
// pipeline.
//
// Configuration is read from a YAML file, filled in with defaults, then
// optionally overridden by AGENTGUARD_* environment variables before
// validation. Environment variables always win over file values.
//
// # Loading sequence
//
//  1. Parse YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate the final configuration
//
// # Example
//
//	cfg, err := config.LoadConfigWithEnvOverrides("agentguard.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A minimal configuration file:
//
//	limit: 25.00
//	mode: soft
//	webhook: https://hooks.example.com/budget
//
// # Environment variables
//
// Overrides follow the AGENTGUARD_SECTION_FIELD convention, for
// example AGENTGUARD_LIMIT, AGENTGUARD_MODE,
// AGENTGUARD_SHARED_LEDGER_URL, and AGENTGUARD_LOGGING_LEVEL.
package config
