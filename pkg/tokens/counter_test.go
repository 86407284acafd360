package tokens

import (
	"strings"
	"testing"

	"github.com/dipampaul17/AgentGuard/pkg/attribution"
)

// The counter must satisfy the attributor's tokenizer contract.
var _ attribution.Tokenizer = (*CharCounter)(nil)

func TestCountTokensEmpty(t *testing.T) {
	c := NewCharCounter()
	n, err := c.CountTokens("", "gpt-4")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if n != 0 {
		t.Errorf("empty text counted %d tokens, want 0", n)
	}
}

func TestCountTokensMinimumOne(t *testing.T) {
	c := NewCharCounter()
	n, err := c.CountTokens("a", "gpt-4")
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("single char counted %d tokens, want 1", n)
	}
}

func TestCountTokensRatios(t *testing.T) {
	c := NewCharCounter()

	// 40 chars at 4 chars/token.
	text := strings.Repeat("x", 40)
	n, _ := c.CountTokens(text, "gpt-4")
	if n != 10 {
		t.Errorf("gpt-4 counted %d tokens for 40 chars, want 10", n)
	}

	// 35 chars at 3.5 chars/token.
	n, _ = c.CountTokens(strings.Repeat("x", 35), "claude-3-opus")
	if n != 10 {
		t.Errorf("claude counted %d tokens for 35 chars, want 10", n)
	}
}

func TestCountTokensUnknownModelUsesDefault(t *testing.T) {
	c := NewCharCounter()
	n, _ := c.CountTokens(strings.Repeat("x", 40), "totally-unknown-model")
	if n != 10 {
		t.Errorf("unknown model counted %d tokens for 40 chars, want 10 at default ratio", n)
	}
}

func TestCountTokensMonotonic(t *testing.T) {
	c := NewCharCounter()
	prev := 0
	for i := 1; i <= 200; i += 10 {
		n, err := c.CountTokens(strings.Repeat("word ", i), "gpt-4")
		if err != nil {
			t.Fatalf("CountTokens: %v", err)
		}
		if n < prev {
			t.Fatalf("count decreased from %d to %d as text grew", prev, n)
		}
		prev = n
	}
}

func TestCustomRatios(t *testing.T) {
	c := NewCharCounterWithRatios(map[string]float64{"house-model": 2.0})
	n, _ := c.CountTokens(strings.Repeat("x", 10), "house-model")
	if n != 5 {
		t.Errorf("custom ratio counted %d tokens, want 5", n)
	}

	// Non-positive overrides are ignored.
	c = NewCharCounterWithRatios(map[string]float64{"gpt-4": -1})
	n, _ = c.CountTokens(strings.Repeat("x", 40), "gpt-4")
	if n != 10 {
		t.Errorf("invalid override changed ratio: got %d, want 10", n)
	}
}
