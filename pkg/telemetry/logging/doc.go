// Package logging provides structured logging for AgentGuard components.
//
// The Logger wraps log/slog with level and format parsing plus an optional
// Redactor that strips credentials and payload content from retained fields.
// Redaction backs the guard's privacy mode: when enabled, payload previews
// and source URLs recorded in the call log are scrubbed before they are
// logged or retained.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("budget tripped", "total", 12.50, "limit", 10.00)
//
// # Levels and Formats
//
// Levels: "debug", "info", "warn", "error". Formats: "json", "text".
// Unknown values are rejected by New.
package logging
