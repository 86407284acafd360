package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified
// path, applies defaults, and validates. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies AGENTGUARD_* environment variable overrides. Environment
// variables always take precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration from environment variables alone,
// with defaults applied. Used when no config file is given.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies AGENTGUARD_SECTION_FIELD environment
// variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("AGENTGUARD_LIMIT"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Limit = f
		}
	}
	if val := os.Getenv("AGENTGUARD_MODE"); val != "" {
		cfg.Mode = val
	}
	if val := os.Getenv("AGENTGUARD_WEBHOOK"); val != "" {
		cfg.Webhook = val
	}
	if val := os.Getenv("AGENTGUARD_SILENT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Silent = b
		}
	}
	if val := os.Getenv("AGENTGUARD_SHARED_LEDGER_URL"); val != "" {
		cfg.SharedLedgerURL = val
	}
	// Accepted alias for the shared ledger address.
	if val := os.Getenv("AGENTGUARD_REDIS_URL"); val != "" {
		cfg.SharedLedgerURL = val
	}
	if val := os.Getenv("AGENTGUARD_PRIVACY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Privacy = b
		}
	}
	if val := os.Getenv("AGENTGUARD_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Enabled = &b
		}
	}
	if val := os.Getenv("AGENTGUARD_JOURNAL_PATH"); val != "" {
		cfg.JournalPath = val
	}
	if val := os.Getenv("AGENTGUARD_INSTANCE"); val != "" {
		cfg.Instance = val
	}

	if val := os.Getenv("AGENTGUARD_PRICES_URL"); val != "" {
		cfg.Prices.URL = val
	}
	if val := os.Getenv("AGENTGUARD_PRICES_CACHE_PATH"); val != "" {
		cfg.Prices.CachePath = val
	}
	if val := os.Getenv("AGENTGUARD_PRICES_OVERRIDES_FILE"); val != "" {
		cfg.Prices.OverridesFile = val
	}
	if val := os.Getenv("AGENTGUARD_PRICES_AUTO_REFRESH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Prices.AutoRefresh = b
		}
	}

	if val := os.Getenv("AGENTGUARD_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("AGENTGUARD_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("AGENTGUARD_LOGGING_REDACT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.Redact = &b
		}
	}

	if val := os.Getenv("AGENTGUARD_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("AGENTGUARD_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
	if val := os.Getenv("AGENTGUARD_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
}
