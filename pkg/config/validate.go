package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/dipampaul17/AgentGuard/pkg/enforcement"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass so users
// can fix their file in one edit.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors. It returns a
// ValidationErrors listing every invalid field, or nil.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if math.IsNaN(cfg.Limit) || math.IsInf(cfg.Limit, 0) {
		errs = append(errs, &ValidationError{"limit", "must be a finite number"})
	} else if cfg.Limit <= 0 {
		errs = append(errs, &ValidationError{"limit", "must be greater than zero"})
	}

	if _, err := enforcement.ParseMode(cfg.Mode); err != nil {
		errs = append(errs, &ValidationError{"mode",
			fmt.Sprintf("must be one of soft, hard_exit, warn_only (got %q)", cfg.Mode)})
	}

	if cfg.Webhook != "" {
		if u, err := url.Parse(cfg.Webhook); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, &ValidationError{"webhook", "must be an http or https URL"})
		}
	}

	if cfg.SharedLedgerURL != "" {
		u, err := url.Parse(cfg.SharedLedgerURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, &ValidationError{"shared_ledger_url", "must be a redis:// or rediss:// URL"})
		}
	}

	if cfg.Prices.URL != "" {
		if u, err := url.Parse(cfg.Prices.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, &ValidationError{"prices.url", "must be an http or https URL"})
		}
	}
	if cfg.Prices.AutoRefresh && cfg.Prices.URL == "" {
		errs = append(errs, &ValidationError{"prices.auto_refresh", "requires prices.url"})
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, &ValidationError{"logging.level",
			fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, &ValidationError{"logging.format",
			fmt.Sprintf("must be text or json (got %q)", cfg.Logging.Format)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
