package attribution

import "time"

// Shape identifies which extraction rule produced an attributed call.
type Shape string

const (
	// ShapeUsage means a canonical usage block with explicit counts.
	ShapeUsage Shape = "usage"

	// ShapeStreamDelta means a streaming chunk with partial output text.
	ShapeStreamDelta Shape = "stream_delta"

	// ShapeContentArray means text segments without usage numbers.
	ShapeContentArray Shape = "content_array"

	// ShapeMultimodal means mixed text/image/audio content items.
	ShapeMultimodal Shape = "multimodal"

	// ShapeOpaque means a bounded stringification of an unknown shape.
	ShapeOpaque Shape = "opaque"

	// ShapeFallback means the fixed conservative estimate was used because
	// every extraction path failed.
	ShapeFallback Shape = "fallback"
)

// AttributedCall is one observed API call with its attributed cost.
// Immutable once created; the call log appends it and never mutates it.
type AttributedCall struct {
	// ID uniquely identifies the call.
	ID string `json:"id"`

	// Timestamp is when the call was attributed (completion order, not
	// request order).
	Timestamp time.Time `json:"timestamp"`

	// Model is the resolved model identifier used for pricing.
	Model string `json:"model"`

	// InputUnits is the attributed input unit (token) count.
	InputUnits int `json:"input_units"`

	// OutputUnits is the attributed output unit (token) count.
	OutputUnits int `json:"output_units"`

	// Cost is the attributed cost in USD. Never negative.
	Cost float64 `json:"cost"`

	// SourceURL is the request URL the payload was observed on, if known.
	SourceURL string `json:"source_url,omitempty"`

	// Shape records which extraction rule matched.
	Shape Shape `json:"shape"`

	// Preview is a short excerpt of the extracted response text. Cleared
	// when privacy redaction is enabled.
	Preview string `json:"preview,omitempty"`
}
