package pricing

// defaultPrices is the bundled price table, USD per 1000 units.
// Used when no snapshot or remote source is available; a remote refresh
// merges over these per key.
var defaultPrices = map[string]Entry{
	// OpenAI
	"gpt-4":         {InputPer1K: 0.03, OutputPer1K: 0.06},
	"gpt-4-32k":     {InputPer1K: 0.06, OutputPer1K: 0.12},
	"gpt-4-turbo":   {InputPer1K: 0.01, OutputPer1K: 0.03},
	"gpt-4o":        {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"gpt-4o-mini":   {InputPer1K: 0.00015, OutputPer1K: 0.0006},
	"gpt-3.5-turbo": {InputPer1K: 0.0015, OutputPer1K: 0.002},

	// Anthropic
	"claude-3-opus":   {InputPer1K: 0.015, OutputPer1K: 0.075},
	"claude-3-sonnet": {InputPer1K: 0.003, OutputPer1K: 0.015},
	"claude-3-haiku":  {InputPer1K: 0.00025, OutputPer1K: 0.00125},
	"claude-2":        {InputPer1K: 0.008, OutputPer1K: 0.024},

	// Fallback for unrecognized models. Priced like a mid-tier model so
	// unknown calls are accounted conservatively rather than free.
	DefaultModel: {InputPer1K: 0.0015, OutputPer1K: 0.002},
}
