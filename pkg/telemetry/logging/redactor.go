package logging

import (
	"fmt"
	"regexp"
)

// Redactor scrubs credentials and payload content from log fields and
// retained call-log entries.
type Redactor struct {
	patterns []*redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names for the built-in redaction rules.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternEmail       = "email"
	PatternURLQuery    = "url_query"
)

// NewRedactor creates a Redactor with the built-in rules.
func NewRedactor() *Redactor {
	r := &Redactor{}
	r.addDefaultPatterns()
	return r
}

// addDefaultPatterns adds the built-in redaction rules.
func (r *Redactor) addDefaultPatterns() {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		// Provider API keys (sk-..., api_key: ...)
		{
			name:        PatternAPIKey,
			regex:       `(sk-[a-zA-Z0-9]+|api[-_]?key[-_:]\s*[a-zA-Z0-9]+)`,
			replacement: "sk-***",
		},
		// Authorization bearer tokens
		{
			name:        PatternBearerToken,
			regex:       `(?i)bearer\s+[a-zA-Z0-9._\-]+`,
			replacement: "Bearer ***",
		},
		// Email addresses
		{
			name:        PatternEmail,
			regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
			replacement: "***@***",
		},
		// URL query strings may carry keys or session identifiers
		{
			name:        PatternURLQuery,
			regex:       `\?[^\s"']+`,
			replacement: "?***",
		},
	}

	for _, p := range defaults {
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.name,
			regex:       regexp.MustCompile(p.regex),
			replacement: p.replacement,
		})
	}
}

// Redact applies all patterns to a string and returns the scrubbed result.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactArgs scrubs string values in a slog-style key/value argument list.
// Keys are left untouched; only values are redacted.
func (r *Redactor) RedactArgs(args ...any) []any {
	out := make([]any, len(args))
	copy(out, args)

	// args alternate key, value; values at odd indices
	for i := 1; i < len(out); i += 2 {
		switch v := out[i].(type) {
		case string:
			out[i] = r.Redact(v)
		case fmt.Stringer:
			out[i] = r.Redact(v.String())
		}
	}

	return out
}
