package config

// Default values applied to unset configuration fields.
const (
	DefaultMode                 = "soft"
	DefaultInstance             = "default"
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsListenAddress = ":9464"
	DefaultMetricsPath          = "/metrics"
)

// ApplyDefaults fills in default values for any unset fields. It never
// overrides an explicitly set value.
func ApplyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.Instance == "" {
		cfg.Instance = DefaultInstance
	}
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Logging.Redact == nil {
		redact := true
		cfg.Logging.Redact = &redact
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
