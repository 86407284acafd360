// Package ledger holds the authoritative running spend total.
//
// # Overview
//
// A Ledger exposes atomic increment-and-read over the running total, a
// point-in-time read, and reset. Two implementations exist:
//
//   - Local: a single in-process accumulator guarded by a mutex.
//   - Redis: a shared counter for deployments where multiple processes
//     draw down one logical budget. Each increment is an atomic
//     INCRBYFLOAT on a shared key with a bounded TTL so abandoned
//     sessions do not inflate future runs reusing the same key.
//
// # Degraded Mode
//
// The Redis ledger mirrors every increment into a local accumulator. On
// the first communication failure it degrades to local-only accounting for
// the remainder of the session, logging the degradation once. No increment
// is ever lost to a store failure: enforcement correctness takes priority
// over cross-process consistency.
//
// # Thread Safety
//
// All ledger operations are safe under concurrent invocation; concurrent
// increments never lose updates.
package ledger
