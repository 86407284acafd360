// Package pricing provides the model price table used for cost attribution.
//
// # Overview
//
// The Table maps model identifiers to per-1K-unit input and output prices.
// Lookups never fail: unrecognized or empty model names fall back to the
// required "default" entry, so every attributed call produces a cost.
//
// # Price Sources
//
// Prices are layered, later sources overriding earlier ones per key:
//
//  1. Bundled defaults (compiled in, always present)
//  2. Disk snapshot from a previous refresh (reused within a freshness window)
//  3. Remote refresh from a configured price endpoint
//  4. Local override file (watched with fsnotify, merged on change)
//
// A refresh failure of any kind preserves the existing table; refresh is
// merge-only and never leaves the table partially updated.
//
// # Usage
//
//	table := pricing.NewTable(nil)
//
//	entry := table.Lookup("gpt-4")
//	cost := table.Cost("gpt-4", 1200, 350)
//
//	// Background refresh every hour
//	stop := table.StartAutoRefresh(refresher)
//	defer stop()
//
// # Thread Safety
//
// All Table operations are safe for concurrent use via sync.RWMutex.
package pricing
