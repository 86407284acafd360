package enforcement

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mode defines what happens when the budget limit is crossed.
type Mode string

const (
	// ModeSoft surfaces a catchable *BudgetExceededError to the caller.
	ModeSoft Mode = "soft"

	// ModeHardExit terminates the host process with a non-zero status.
	ModeHardExit Mode = "hard_exit"

	// ModeWarnOnly logs the trip and lets execution continue.
	ModeWarnOnly Mode = "warn_only"
)

// ParseMode parses a mode string, accepting a few common spellings.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "soft", "":
		return ModeSoft, nil
	case "hard_exit", "hardExit", "hard-exit", "exit":
		return ModeHardExit, nil
	case "warn_only", "warnOnly", "warn-only", "warn":
		return ModeWarnOnly, nil
	default:
		return "", fmt.Errorf("unknown enforcement mode: %q", s)
	}
}

// SavingsMultiple scales the user-facing "estimated savings" figure
// reported on trip. Purely informational; never used in control decisions.
const SavingsMultiple = 5.0

// ErrBudgetExceeded is the sentinel matched by errors.Is for budget trips.
var ErrBudgetExceeded = errors.New("budget exceeded")

// BudgetExceededError is the structured error surfaced in soft mode. It
// carries the numeric context a caller needs to decide what to do next.
type BudgetExceededError struct {
	// TotalCost is the running total at trip time, USD.
	TotalCost float64

	// Limit is the configured budget ceiling, USD.
	Limit float64

	// PercentUsed is TotalCost/Limit expressed as a percentage.
	PercentUsed float64

	// EstimatedSavings is the informational savings figure computed at
	// trip time.
	EstimatedSavings float64

	// Timestamp is when the trip fired.
	Timestamp time.Time
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: spent $%.4f of $%.4f limit (%.1f%%)",
		e.TotalCost, e.Limit, e.PercentUsed)
}

// Unwrap lets errors.Is(err, ErrBudgetExceeded) match.
func (e *BudgetExceededError) Unwrap() error {
	return ErrBudgetExceeded
}

// Notification is the one-shot payload dispatched on trip.
type Notification struct {
	// Text is the human-readable trip message.
	Text string `json:"text"`

	// Timestamp is the trip time in ISO 8601.
	Timestamp time.Time `json:"timestamp"`

	// Cost is the running total at trip time, USD.
	Cost float64 `json:"cost"`

	// Limit is the configured budget ceiling, USD.
	Limit float64 `json:"limit"`
}

// InvalidLimitError reports a budget ceiling that is not a positive
// finite number.
type InvalidLimitError struct {
	Limit float64
}

// Error implements the error interface.
func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("invalid budget limit %v: must be a positive finite number", e.Limit)
}

// Notifier delivers trip notifications to an external target.
type Notifier interface {
	// Notify delivers one notification. Failures must be handled by the
	// implementation; the controller neither retries nor propagates them.
	Notify(ctx context.Context, n Notification)
}
