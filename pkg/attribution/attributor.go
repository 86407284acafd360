package attribution

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dipampaul17/AgentGuard/pkg/pricing"
	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// DefaultMaxOpaqueLen bounds how much of an unknown payload is stringified
// for estimation, so a pathological object cannot produce a pathological
// cost.
const DefaultMaxOpaqueLen = 1000

// Conservative unit estimate applied when every extraction path fails.
// One constant for all failure paths: 50 input and 50 output units priced
// through the resolved model.
const (
	fallbackInputUnits  = 50
	fallbackOutputUnits = 50
)

// Fixed per-item unit baselines for multimodal content.
const (
	unitsPerImage        = 85
	unitsPerAudioSegment = 100
)

// Weighting used to split an unstructured unit total between input and
// output when the payload gives no structural split.
const (
	splitInputWeight  = 0.2
	splitOutputWeight = 0.8
)

var errTokenizerPanic = errors.New("tokenizer panicked")

// Config configures an Attributor.
type Config struct {
	// Table prices the extracted units. Required.
	Table *pricing.Table

	// Tokenizer is an optional exact tokenizer, preferred over the
	// heuristic estimator when it succeeds.
	Tokenizer Tokenizer

	// MaxOpaqueLen bounds opaque-payload stringification.
	// Default: DefaultMaxOpaqueLen.
	MaxOpaqueLen int

	// Logger receives attribution diagnostics. Default: logging.Nop().
	Logger *logging.Logger
}

// Attributor extracts consumed units from response payloads and prices
// them. It holds no mutable state and is safe for concurrent use.
type Attributor struct {
	table        *pricing.Table
	tokenizer    Tokenizer
	maxOpaqueLen int
	logger       *logging.Logger
}

// NewAttributor creates an attributor over the given price table.
func NewAttributor(cfg Config) *Attributor {
	if cfg.MaxOpaqueLen <= 0 {
		cfg.MaxOpaqueLen = DefaultMaxOpaqueLen
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return &Attributor{
		table:        cfg.Table,
		tokenizer:    cfg.Tokenizer,
		maxOpaqueLen: cfg.MaxOpaqueLen,
		logger:       cfg.Logger,
	}
}

// Attribute converts a raw payload into an AttributedCall, or nil when the
// payload does not resemble an API response.
//
// The payload may be a decoded JSON object, raw JSON bytes/string, or any
// value that marshals to a JSON object. modelHint and sourceURL come from
// the observing context and are both optional.
//
// Attribute never panics. If an extraction rule fails unexpectedly the call
// is attributed with the fixed conservative estimate instead of being lost.
func (a *Attributor) Attribute(payload interface{}, modelHint, sourceURL string) (call *AttributedCall) {
	obj := normalize(payload)
	if obj == nil || !looksLikeResponse(obj) {
		return nil
	}

	model := resolveModel(obj, modelHint, sourceURL)

	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("attribution recovered from panic, using conservative estimate",
				"panic", fmt.Sprint(r), "model", model)
			call = a.newCall(model, fallbackInputUnits, fallbackOutputUnits, sourceURL, ShapeFallback, "")
		}
	}()

	if in, out, ok := extractUsage(obj); ok {
		return a.newCall(model, in, out, sourceURL, ShapeUsage, "")
	}

	if text, ok := extractStreamDelta(obj); ok {
		out := a.countTokens(text, model)
		return a.newCall(model, 0, out, sourceURL, ShapeStreamDelta, text)
	}

	if text, images, audio, ok := extractContent(obj); ok {
		textUnits := a.countTokens(text, model)

		if images == 0 && audio == 0 {
			return a.newCall(model, 0, textUnits, sourceURL, ShapeContentArray, text)
		}

		total := textUnits + images*unitsPerImage + audio*unitsPerAudioSegment
		in, out := splitUnits(total)
		return a.newCall(model, in, out, sourceURL, ShapeMultimodal, text)
	}

	// Unknown but response-like shape: bounded stringification.
	text := stringifyBounded(obj, a.maxOpaqueLen)
	total := EstimateTokens(text)
	in, out := splitUnits(total)
	return a.newCall(model, in, out, sourceURL, ShapeOpaque, "")
}

// newCall assembles an immutable AttributedCall with a priced cost.
func (a *Attributor) newCall(model string, in, out int, sourceURL string, shape Shape, text string) *AttributedCall {
	if in < 0 {
		in = 0
	}
	if out < 0 {
		out = 0
	}

	return &AttributedCall{
		ID:          uuid.New().String(),
		Timestamp:   time.Now(),
		Model:       model,
		InputUnits:  in,
		OutputUnits: out,
		Cost:        a.table.Cost(model, in, out),
		SourceURL:   sourceURL,
		Shape:       shape,
		Preview:     preview(text),
	}
}

// normalize coerces a payload into a JSON-style object map, or nil when it
// cannot be represented as one.
func normalize(payload interface{}) map[string]interface{} {
	switch v := payload.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		return v
	case []byte:
		return decodeObject(v)
	case json.RawMessage:
		return decodeObject(v)
	case string:
		return decodeObject([]byte(v))
	default:
		// Structs and other values go through a JSON round-trip. Marshal
		// reports an error for cyclic values instead of panicking.
		data, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		return decodeObject(data)
	}
}

// decodeObject unmarshals data into an object map, nil on failure.
func decodeObject(data []byte) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

// looksLikeResponse reports whether the object resembles a metered API
// response. The observation layer calls Attribute speculatively on every
// payload it sees; anything else is a no-op.
func looksLikeResponse(obj map[string]interface{}) bool {
	for _, key := range []string{"usage", "choices", "content", "completion", "delta"} {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

// extractUsage handles the canonical usage block: explicit prompt/completion
// or input/output counts.
func extractUsage(obj map[string]interface{}) (in, out int, ok bool) {
	usage, isMap := obj["usage"].(map[string]interface{})
	if !isMap {
		return 0, 0, false
	}

	in, inOK := firstInt(usage, "prompt_tokens", "input_tokens")
	out, outOK := firstInt(usage, "completion_tokens", "output_tokens")
	if !inOK && !outOK {
		return 0, 0, false
	}

	if in < 0 {
		in = 0
	}
	if out < 0 {
		out = 0
	}
	return in, out, true
}

// extractStreamDelta handles streaming partial chunks. Only output units
// are countable per chunk; input units are attributed as zero.
func extractStreamDelta(obj map[string]interface{}) (string, bool) {
	// OpenAI-style: choices[].delta.content
	if choices, isArr := obj["choices"].([]interface{}); isArr {
		var sb strings.Builder
		found := false
		for _, c := range choices {
			choice, isMap := c.(map[string]interface{})
			if !isMap {
				continue
			}
			delta, isMap := choice["delta"].(map[string]interface{})
			if !isMap {
				continue
			}
			found = true
			if text, isStr := delta["content"].(string); isStr {
				sb.WriteString(text)
			}
		}
		if found {
			return sb.String(), true
		}
	}

	// Anthropic-style: top-level delta.text
	if delta, isMap := obj["delta"].(map[string]interface{}); isMap {
		if text, isStr := delta["text"].(string); isStr {
			return text, true
		}
		return "", true
	}

	return "", false
}

// extractContent handles content-array and multimodal shapes plus plain
// message content. It returns the concatenated text and counts of image and
// audio items; ok is false when the object carries none of these shapes.
func extractContent(obj map[string]interface{}) (text string, images, audio int, ok bool) {
	var sb strings.Builder

	// Vendor content field: string or array of blocks.
	switch content := obj["content"].(type) {
	case string:
		sb.WriteString(content)
		ok = true
	case []interface{}:
		i, a := scanContentItems(content, &sb)
		images += i
		audio += a
		ok = true
	}

	// choices[].message.content: string or multimodal array.
	if choices, isArr := obj["choices"].([]interface{}); isArr {
		for _, c := range choices {
			choice, isMap := c.(map[string]interface{})
			if !isMap {
				continue
			}
			message, isMap := choice["message"].(map[string]interface{})
			if !isMap {
				continue
			}
			switch content := message["content"].(type) {
			case string:
				sb.WriteString(content)
				ok = true
			case []interface{}:
				i, a := scanContentItems(content, &sb)
				images += i
				audio += a
				ok = true
			}
		}
	}

	// Bare completion text (legacy completions API).
	if completion, isStr := obj["completion"].(string); isStr {
		sb.WriteString(completion)
		ok = true
	}

	return sb.String(), images, audio, ok
}

// scanContentItems walks a content array, accumulating text and counting
// image and audio items.
func scanContentItems(items []interface{}, sb *strings.Builder) (images, audio int) {
	for _, item := range items {
		block, isMap := item.(map[string]interface{})
		if !isMap {
			if s, isStr := item.(string); isStr {
				sb.WriteString(s)
			}
			continue
		}

		itemType, _ := block["type"].(string)
		switch {
		case itemType == "text" || itemType == "":
			if text, isStr := block["text"].(string); isStr {
				sb.WriteString(text)
			}
		case strings.Contains(itemType, "image"):
			images++
		case strings.Contains(itemType, "audio"):
			audio++
		default:
			// Unknown item kinds contribute their text field if any.
			if text, isStr := block["text"].(string); isStr {
				sb.WriteString(text)
			}
		}
	}
	return images, audio
}

// splitUnits divides a unit total between input and output using the fixed
// 20/80 weighting.
func splitUnits(total int) (in, out int) {
	if total <= 0 {
		return 0, 0
	}
	in = int(math.Round(float64(total) * splitInputWeight))
	out = total - in
	return in, out
}

// stringifyBounded renders an object to at most maxLen characters.
func stringifyBounded(obj map[string]interface{}, maxLen int) string {
	data, err := json.Marshal(obj)
	var s string
	if err != nil {
		s = fmt.Sprintf("%v", obj)
	} else {
		s = string(data)
	}

	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// firstInt returns the first present key converted to a non-fractional int.
func firstInt(m map[string]interface{}, keys ...string) (int, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if n, numOK := asInt(v); numOK {
				return n, true
			}
		}
	}
	return 0, false
}

// asInt converts JSON numeric representations to an integer-rounded count.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(math.Round(n)), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

// preview returns a short excerpt of extracted text for the call log.
func preview(text string) string {
	const maxPreview = 120
	if len(text) > maxPreview {
		return text[:maxPreview]
	}
	return text
}
