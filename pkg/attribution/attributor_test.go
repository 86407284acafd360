package attribution

import (
	"strings"
	"testing"

	"github.com/dipampaul17/AgentGuard/pkg/pricing"
)

func newTestAttributor(t *testing.T) *Attributor {
	t.Helper()
	return NewAttributor(Config{Table: pricing.NewTable(nil)})
}

func TestAttribute_NonResponsePayloadsReturnNil(t *testing.T) {
	a := newTestAttributor(t)

	tests := []struct {
		name    string
		payload interface{}
	}{
		{"nil", nil},
		{"plain string", "hello world"},
		{"number-ish string", "42"},
		{"json array", `[1, 2, 3]`},
		{"unrelated object", map[string]interface{}{"status": "ok"}},
		{"invalid json bytes", []byte("{not json")},
		{"channel value", make(chan int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if call := a.Attribute(tt.payload, "", ""); call != nil {
				t.Errorf("Expected nil for %s, got %+v", tt.name, call)
			}
		})
	}
}

func TestAttribute_CanonicalUsage(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"model": "gpt-3.5-turbo",
		"usage": map[string]interface{}{
			"prompt_tokens":     float64(13),
			"completion_tokens": float64(10),
		},
	}

	call := a.Attribute(payload, "", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.Shape != ShapeUsage {
		t.Errorf("Expected usage shape, got %s", call.Shape)
	}
	if call.InputUnits != 13 || call.OutputUnits != 10 {
		t.Errorf("Expected 13/10 units, got %d/%d", call.InputUnits, call.OutputUnits)
	}

	// (13*0.0015 + 10*0.002)/1000
	expected := 0.0000395
	if diff := call.Cost - expected; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("Expected cost %.10f, got %.10f", expected, call.Cost)
	}
}

func TestAttribute_AnthropicUsageKeys(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"model": "claude-3-sonnet",
		"usage": map[string]interface{}{
			"input_tokens":  float64(200),
			"output_tokens": float64(50),
		},
	}

	call := a.Attribute(payload, "", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.InputUnits != 200 || call.OutputUnits != 50 {
		t.Errorf("Expected 200/50 units, got %d/%d", call.InputUnits, call.OutputUnits)
	}
}

func TestAttribute_NegativeUsageClamped(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"usage": map[string]interface{}{
			"prompt_tokens":     float64(-50),
			"completion_tokens": float64(-10),
		},
	}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.InputUnits != 0 || call.OutputUnits != 0 {
		t.Errorf("Expected clamped units, got %d/%d", call.InputUnits, call.OutputUnits)
	}
	if call.Cost != 0 {
		t.Errorf("Expected zero cost, got %f", call.Cost)
	}
}

func TestAttribute_StreamDelta(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"delta": map[string]interface{}{"content": "partial output text"},
			},
		},
	}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.Shape != ShapeStreamDelta {
		t.Errorf("Expected stream_delta shape, got %s", call.Shape)
	}
	if call.InputUnits != 0 {
		t.Errorf("Stream chunks carry no input units, got %d", call.InputUnits)
	}
	if call.OutputUnits <= 0 {
		t.Errorf("Expected positive output units, got %d", call.OutputUnits)
	}
}

func TestAttribute_AnthropicStreamDelta(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"delta": map[string]interface{}{"text": "chunk of text"},
	}

	call := a.Attribute(payload, "claude-3-sonnet", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.Shape != ShapeStreamDelta {
		t.Errorf("Expected stream_delta shape, got %s", call.Shape)
	}
}

func TestAttribute_ChoicesWithoutUsage(t *testing.T) {
	a := newTestAttributor(t)

	// Spec scenario: {choices:[{message:{content:"hi"}}]} with no usage
	// must attribute via estimation, never return nil.
	payload := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"content": "hi"},
			},
		},
	}

	call := a.Attribute(payload, "gpt-3.5-turbo", "")
	if call == nil {
		t.Fatal("Expected non-nil call for choices shape")
	}
	if call.Cost <= 0 {
		t.Errorf("Expected positive estimated cost, got %f", call.Cost)
	}
	if call.Shape != ShapeContentArray {
		t.Errorf("Expected content_array shape, got %s", call.Shape)
	}
}

func TestAttribute_ContentBlockArray(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{"type": "text", "text": "first segment, "},
			map[string]interface{}{"type": "text", "text": "second segment"},
		},
	}

	call := a.Attribute(payload, "claude-3-haiku", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.Shape != ShapeContentArray {
		t.Errorf("Expected content_array shape, got %s", call.Shape)
	}
	if call.OutputUnits != EstimateTokens("first segment, second segment") {
		t.Errorf("Expected concatenated-text estimate, got %d", call.OutputUnits)
	}
}

func TestAttribute_Multimodal(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"content": []interface{}{
			map[string]interface{}{"type": "text", "text": "caption text"},
			map[string]interface{}{"type": "image_url", "image_url": "https://example.com/a.png"},
			map[string]interface{}{"type": "audio", "data": "..."},
		},
	}

	call := a.Attribute(payload, "gpt-4o", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.Shape != ShapeMultimodal {
		t.Errorf("Expected multimodal shape, got %s", call.Shape)
	}

	total := call.InputUnits + call.OutputUnits
	expectedTotal := EstimateTokens("caption text") + unitsPerImage + unitsPerAudioSegment
	if total != expectedTotal {
		t.Errorf("Expected total %d units, got %d", expectedTotal, total)
	}

	// ~20/80 split
	if call.InputUnits >= call.OutputUnits {
		t.Errorf("Expected output-heavy split, got %d/%d", call.InputUnits, call.OutputUnits)
	}
}

func TestAttribute_OpaqueShape(t *testing.T) {
	a := newTestAttributor(t)

	payload := map[string]interface{}{
		"completion": map[string]interface{}{"weird": "nested thing"},
	}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call for response-like opaque payload")
	}
	if call.Shape != ShapeOpaque {
		t.Errorf("Expected opaque shape, got %s", call.Shape)
	}
	if call.Cost < 0 {
		t.Errorf("Cost must be non-negative, got %f", call.Cost)
	}
}

func TestAttribute_OpaqueBounded(t *testing.T) {
	a := newTestAttributor(t)

	huge := strings.Repeat("x", 100000)
	payload := map[string]interface{}{"usage": huge}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}

	// Bounded stringification caps the estimate
	bound := EstimateTokens(strings.Repeat("x", DefaultMaxOpaqueLen))
	if call.InputUnits+call.OutputUnits > bound+1 {
		t.Errorf("Expected bounded estimate <= %d, got %d", bound, call.InputUnits+call.OutputUnits)
	}
}

func TestAttribute_RawJSONPayloads(t *testing.T) {
	a := newTestAttributor(t)

	raw := `{"model":"gpt-4","usage":{"prompt_tokens":100,"completion_tokens":20}}`

	for _, payload := range []interface{}{raw, []byte(raw)} {
		call := a.Attribute(payload, "", "")
		if call == nil {
			t.Fatal("Expected non-nil call for raw JSON")
		}
		if call.Model != "gpt-4" || call.InputUnits != 100 {
			t.Errorf("Expected parsed raw JSON, got %+v", call)
		}
	}
}

func TestAttribute_ModelResolutionOrder(t *testing.T) {
	a := newTestAttributor(t)
	usage := map[string]interface{}{"prompt_tokens": float64(1), "completion_tokens": float64(1)}

	// 1. Payload model field wins
	call := a.Attribute(map[string]interface{}{"model": "gpt-4", "usage": usage},
		"claude-3-opus", "https://api.anthropic.com/v1/messages")
	if call.Model != "gpt-4" {
		t.Errorf("Expected payload model, got %s", call.Model)
	}

	// 2. Hint next
	call = a.Attribute(map[string]interface{}{"usage": usage},
		"claude-3-opus", "https://api.openai.com/v1/chat/completions")
	if call.Model != "claude-3-opus" {
		t.Errorf("Expected hint model, got %s", call.Model)
	}

	// 3. Provider default from source URL
	call = a.Attribute(map[string]interface{}{"usage": usage},
		"", "https://api.openai.com/v1/chat/completions")
	if call.Model != "gpt-3.5-turbo" {
		t.Errorf("Expected provider default, got %s", call.Model)
	}

	// 4. Global default
	call = a.Attribute(map[string]interface{}{"usage": usage}, "", "")
	if call.Model != pricing.DefaultModel {
		t.Errorf("Expected global default, got %s", call.Model)
	}
}

func TestAttribute_NeverNegativeCost(t *testing.T) {
	a := newTestAttributor(t)

	malformed := []map[string]interface{}{
		{"usage": map[string]interface{}{"prompt_tokens": float64(-1e9)}},
		{"usage": map[string]interface{}{"prompt_tokens": "NaN"}},
		{"usage": "not a map", "choices": nil},
		{"choices": []interface{}{nil, "garbage", float64(7)}},
		{"content": []interface{}{map[string]interface{}{"type": "image"}}},
		{"delta": "not a map"},
	}

	for i, payload := range malformed {
		call := a.Attribute(payload, "", "")
		if call != nil && call.Cost < 0 {
			t.Errorf("Case %d: cost must be non-negative, got %f", i, call.Cost)
		}
	}
}

type panickyTokenizer struct{}

func (panickyTokenizer) CountTokens(text, model string) (int, error) {
	panic("tokenizer exploded")
}

func TestAttribute_TokenizerPanicFallsBackToEstimator(t *testing.T) {
	a := NewAttributor(Config{
		Table:     pricing.NewTable(nil),
		Tokenizer: panickyTokenizer{},
	})

	payload := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"content": "some response text"},
			},
		},
	}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call despite tokenizer panic")
	}
	if call.OutputUnits != EstimateTokens("some response text") {
		t.Errorf("Expected estimator fallback, got %d units", call.OutputUnits)
	}
}

type fixedTokenizer struct{ n int }

func (f fixedTokenizer) CountTokens(text, model string) (int, error) {
	return f.n, nil
}

func TestAttribute_ExactTokenizerPreferred(t *testing.T) {
	a := NewAttributor(Config{
		Table:     pricing.NewTable(nil),
		Tokenizer: fixedTokenizer{n: 77},
	})

	payload := map[string]interface{}{"content": "whatever text"}

	call := a.Attribute(payload, "gpt-4", "")
	if call == nil {
		t.Fatal("Expected non-nil call")
	}
	if call.OutputUnits != 77 {
		t.Errorf("Expected exact tokenizer count 77, got %d", call.OutputUnits)
	}
}

func BenchmarkAttribute_Usage(b *testing.B) {
	a := NewAttributor(Config{Table: pricing.NewTable(nil)})
	payload := map[string]interface{}{
		"model": "gpt-4",
		"usage": map[string]interface{}{
			"prompt_tokens":     float64(1200),
			"completion_tokens": float64(400),
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Attribute(payload, "", "")
	}
}

func BenchmarkAttribute_Estimated(b *testing.B) {
	a := NewAttributor(Config{Table: pricing.NewTable(nil)})
	payload := map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]interface{}{"content": strings.Repeat("word ", 200)},
			},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Attribute(payload, "gpt-4", "")
	}
}
