// Package attribution converts raw API response payloads into attributed
// costs.
//
// # Overview
//
// The Attributor inspects a payload handed over by an observation layer
// (HTTP client wrapper, log interceptor) and decides whether it resembles a
// metered inference response. If it does, the Attributor extracts or
// estimates the consumed input and output units and prices them through the
// pricing table, producing an AttributedCall. If it does not, Attribute
// returns nil and the caller treats the payload as a no-op, so the
// observation layer can call Attribute speculatively on everything it sees.
//
// # Recognized Shapes
//
// Extraction tries each shape in order, first match wins:
//
//  1. Canonical usage block (prompt/completion or input/output token counts)
//  2. Streaming partial delta (per-chunk output text, no input units)
//  3. Content array (text segments without usage numbers)
//  4. Multimodal content (mixed text/image/audio items)
//  5. Opaque (bounded stringification of anything response-like)
//
// When every path fails, Attribute falls back to a fixed conservative
// estimate rather than dropping the call: under-accounting defeats the
// purpose of a budget guard.
//
// # Guarantees
//
// Attribute never panics and never returns a negative cost, whatever the
// payload looks like (negative counts, circular values, wrong types).
// Attribution is synchronous and CPU-only; it performs no I/O.
package attribution
