package attribution

import (
	"math"
	"strings"
)

// Tokenizer counts exact tokens for a model family. Implementations wrap
// vendor tokenizers; any error falls back to the heuristic estimator.
type Tokenizer interface {
	// CountTokens returns the exact token count for text under model.
	CountTokens(text string, model string) (int, error)
}

// EstimateTokens is the heuristic fallback token estimator:
//
//	ceil(wordCount*1.3 + charCount*0.25)
//
// It never fails; empty text yields 0. The estimate is monotonically
// non-decreasing in text length for fixed word density.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	words := len(strings.Fields(text))
	chars := len(text)

	return int(math.Ceil(float64(words)*1.3 + float64(chars)*0.25))
}

// countTokens prefers the exact tokenizer when one is configured, falling
// back to EstimateTokens on any tokenizer failure. Attribution must never
// fail the caller's flow because a tokenizer did.
func (a *Attributor) countTokens(text, model string) int {
	if text == "" {
		return 0
	}

	if a.tokenizer != nil {
		n, err := safeCount(a.tokenizer, text, model)
		if err == nil && n >= 0 {
			return n
		}
	}

	return EstimateTokens(text)
}

// safeCount invokes a tokenizer, converting panics into errors.
func safeCount(tk Tokenizer, text, model string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errTokenizerPanic
		}
	}()
	return tk.CountTokens(text, model)
}
