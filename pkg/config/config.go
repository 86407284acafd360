package config

// Config is the root configuration for an AgentGuard instance.
type Config struct {
	// Limit is the budget ceiling in USD. Required; must be a positive
	// finite number.
	Limit float64 `yaml:"limit"`

	// Mode selects the trip behavior: "soft", "hard_exit", or
	// "warn_only". Defaults to "soft", the non-destructive option.
	Mode string `yaml:"mode"`

	// Webhook is an optional notification target URL. Empty disables
	// trip notifications.
	Webhook string `yaml:"webhook"`

	// Silent suppresses the per-call spend readout.
	Silent bool `yaml:"silent"`

	// SharedLedgerURL is an optional Redis URL enabling shared-budget
	// mode across processes. Empty selects in-process accounting.
	SharedLedgerURL string `yaml:"shared_ledger_url"`

	// Privacy strips payload content from retained call-log entries.
	Privacy bool `yaml:"privacy"`

	// Enabled is the master on/off switch. Defaults to true.
	Enabled *bool `yaml:"enabled"`

	// JournalPath enables the on-disk SQLite spend journal. Empty
	// disables journaling.
	JournalPath string `yaml:"journal_path"`

	// Instance labels this guard's metrics. Defaults to "default".
	Instance string `yaml:"instance"`

	// Prices configures the price table's refresh sources.
	Prices PricesConfig `yaml:"prices"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus exposition endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// PricesConfig configures where model prices come from beyond the
// bundled defaults.
type PricesConfig struct {
	// URL is a remote price feed polled by the refresher. Empty
	// disables remote refresh.
	URL string `yaml:"url"`

	// CachePath is the on-disk price snapshot location. A fresh
	// snapshot is preferred over a network fetch.
	CachePath string `yaml:"cache_path"`

	// OverridesFile is a YAML file of per-model price overrides,
	// merged on top of the defaults and watched for changes.
	OverridesFile string `yaml:"overrides_file"`

	// AutoRefresh enables hourly background refresh from URL.
	AutoRefresh bool `yaml:"auto_refresh"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is the minimum severity: debug, info, warn, or error.
	// Defaults to "info".
	Level string `yaml:"level"`

	// Format is "text" or "json". Defaults to "text".
	Format string `yaml:"format"`

	// Redact scrubs API keys, bearer tokens, and similar secrets from
	// log output. Defaults to true.
	Redact *bool `yaml:"redact"`
}

// MetricsConfig configures the Prometheus exposition endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics HTTP endpoint on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the metrics server bind address.
	// Defaults to ":9464".
	ListenAddress string `yaml:"listen_address"`

	// Path is the exposition path. Defaults to "/metrics".
	Path string `yaml:"path"`
}

// IsEnabled reports the master switch, treating unset as on.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// RedactLogs reports whether log redaction is active, treating unset
// as on.
func (c *Config) RedactLogs() bool {
	return c.Logging.Redact == nil || *c.Logging.Redact
}
