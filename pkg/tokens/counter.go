package tokens

import "strings"

// DefaultCharsPerToken is the ratio used for models without a
// family-specific entry.
const DefaultCharsPerToken = 4.0

// familyRatios maps model identifier prefixes to characters-per-token
// ratios. Longest prefix wins.
var familyRatios = map[string]float64{
	"gpt-4":         4.0,
	"gpt-3.5":       4.0,
	"gpt-3.5-turbo": 4.0,
	"o1":            4.0,
	"claude":        3.5,
	"claude-3":      3.5,
	"gemini":        4.0,
	"mistral":       3.8,
	"llama":         3.9,
}

// CharCounter counts tokens from character length using per-family
// ratios. The zero value is not usable; construct with NewCharCounter.
type CharCounter struct {
	ratios map[string]float64
}

// NewCharCounter creates a counter with the built-in family ratios.
func NewCharCounter() *CharCounter {
	return &CharCounter{ratios: familyRatios}
}

// NewCharCounterWithRatios creates a counter with custom ratios merged
// over the built-in ones.
func NewCharCounterWithRatios(overrides map[string]float64) *CharCounter {
	ratios := make(map[string]float64, len(familyRatios)+len(overrides))
	for k, v := range familyRatios {
		ratios[k] = v
	}
	for k, v := range overrides {
		if v > 0 {
			ratios[k] = v
		}
	}
	return &CharCounter{ratios: ratios}
}

// CountTokens estimates the token count of text for a model. Empty
// text counts zero; any non-empty text counts at least one token.
func (c *CharCounter) CountTokens(text, model string) (int, error) {
	if text == "" {
		return 0, nil
	}

	tokens := float64(len(text)) / c.charsPerToken(model)
	if tokens < 1.0 {
		tokens = 1.0
	}
	return int(tokens + 0.5), nil
}

// charsPerToken resolves the ratio for a model by longest matching
// prefix, falling back to DefaultCharsPerToken.
func (c *CharCounter) charsPerToken(model string) float64 {
	model = strings.ToLower(model)

	if ratio, ok := c.ratios[model]; ok {
		return ratio
	}

	bestLen := 0
	ratio := DefaultCharsPerToken
	for prefix, r := range c.ratios {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			ratio = r
		}
	}
	return ratio
}
