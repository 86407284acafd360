// Package enforcement implements the budget trip state machine.
//
// # Overview
//
// A Controller compares each new ledger total against the configured limit
// and, on the first crossing, executes the configured stop action exactly
// once per session:
//
//   - soft: Evaluate returns a *BudgetExceededError the caller can catch
//     and react to (persist state, switch models, abort gracefully).
//   - hard_exit: the process terminates with a non-zero status after a
//     short delay that lets buffered output flush.
//   - warn_only: the trip is logged and execution continues uninterrupted.
//
// # Sessions
//
// A session runs from initialization (or the last Reset) to the next
// Reset. Within one session the controller trips at most once: concurrent
// crossings fire a single stop action and a single notification. Reset
// returns the controller to Active with a cleared trip flag.
//
// # Notifications
//
// On trip the controller dispatches a one-shot notification to the
// configured target as a detached background task. Notification failures
// are logged and never retried within the same trip event; they never
// reach the caller's flow.
package enforcement
