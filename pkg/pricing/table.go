package pricing

import (
	"strings"
	"sync"
)

// DefaultModel is the fallback key that must always be present in the table.
const DefaultModel = "default"

// Entry contains the per-1K-unit prices for a model.
type Entry struct {
	// Model is the model identifier this entry applies to.
	Model string `json:"model" yaml:"model"`

	// InputPer1K is the cost per 1000 input units in USD.
	InputPer1K float64 `json:"input" yaml:"input"`

	// OutputPer1K is the cost per 1000 output units in USD.
	OutputPer1K float64 `json:"output" yaml:"output"`
}

// Table is a thread-safe mapping from model identifier to price entry.
//
// The "default" entry is always present: NewTable installs it from the
// bundled defaults and Merge refuses to remove it.
type Table struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewTable creates a price table seeded with the bundled default prices,
// then merged with the given overrides (may be nil).
func NewTable(overrides map[string]Entry) *Table {
	t := &Table{
		entries: make(map[string]Entry, len(defaultPrices)+len(overrides)),
	}

	for model, e := range defaultPrices {
		e.Model = model
		t.entries[model] = e
	}

	t.Merge(overrides)
	return t
}

// Lookup returns the price entry for a model. It never fails: unknown or
// empty model names return the "default" entry. Model matching tries an
// exact match first, then the longest prefix match (so "gpt-4-0613"
// resolves to the "gpt-4" entry).
func (t *Table) Lookup(model string) Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if model != "" {
		if e, ok := t.entries[model]; ok {
			return e
		}

		// Longest prefix match so "gpt-4-turbo" beats "gpt-4" for
		// "gpt-4-turbo-2024" lookups.
		var best Entry
		bestLen := 0
		for pattern, e := range t.entries {
			if pattern == DefaultModel {
				continue
			}
			if strings.HasPrefix(model, pattern) && len(pattern) > bestLen {
				best = e
				bestLen = len(pattern)
			}
		}
		if bestLen > 0 {
			return best
		}
	}

	return t.entries[DefaultModel]
}

// Cost computes the monetary cost for the given unit counts against the
// model's price entry. Negative unit counts are clamped to zero so malformed
// upstream data can never produce a negative cost.
func (t *Table) Cost(model string, inputUnits, outputUnits int) float64 {
	e := t.Lookup(model)

	if inputUnits < 0 {
		inputUnits = 0
	}
	if outputUnits < 0 {
		outputUnits = 0
	}

	return (float64(inputUnits)/1000.0)*e.InputPer1K +
		(float64(outputUnits)/1000.0)*e.OutputPer1K
}

// Merge merges entries into the table, new values overriding old per key.
// A merge never removes entries, so the "default" entry survives.
func (t *Table) Merge(entries map[string]Entry) {
	if len(entries) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for model, e := range entries {
		e.Model = model
		t.entries[model] = e
	}
}

// Snapshot returns a copy of the current table contents.
func (t *Table) Snapshot() map[string]Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Entry, len(t.entries))
	for model, e := range t.entries {
		out[model] = e
	}
	return out
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
