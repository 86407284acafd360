package enforcement

import (
	"context"
	"math"
	"os"
	"sync"
	"time"

	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// DefaultExitDelay is how long a hard-exit controller waits after logging
// the final spend summary before terminating the process. The delay gives
// asynchronous log and notification writers a chance to flush.
const DefaultExitDelay = 100 * time.Millisecond

// Config configures a Controller.
type Config struct {
	// Limit is the budget ceiling in USD. Must be positive and finite.
	Limit float64

	// Mode selects the action taken when the budget trips.
	// Defaults to ModeSoft.
	Mode Mode

	// Notifier receives a one-shot notification when the budget trips.
	// Optional.
	Notifier Notifier

	// Logger for enforcement events. Defaults to a no-op logger.
	Logger *logging.Logger

	// ExitFunc terminates the process in hard-exit mode.
	// Defaults to os.Exit. Overridable for tests.
	ExitFunc func(code int)

	// ExitDelay is the flush pause before ExitFunc runs.
	// Defaults to DefaultExitDelay.
	ExitDelay time.Duration
}

// Controller is the budget trip state machine.
//
// A controller starts in the active state. The first Evaluate call that
// observes a total at or above the limit transitions it to tripped,
// fires the configured enforcement action exactly once, and dispatches
// the notification. Subsequent Evaluate calls while tripped repeat the
// mode's steady-state behavior (soft mode keeps returning the budget
// error) but never re-notify. Reset returns the controller to active.
type Controller struct {
	mu       sync.Mutex
	limit    float64
	mode     Mode
	tripped  bool
	lastTrip *BudgetExceededError

	notifier  Notifier
	logger    *logging.Logger
	exitFunc  func(code int)
	exitDelay time.Duration
}

// NewController creates a budget controller.
//
// Returns an error if the limit is not a positive finite number or the
// mode is unknown.
func NewController(config Config) (*Controller, error) {
	if err := validateLimit(config.Limit); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(config.Mode))
	if err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = logging.Nop()
	}
	if config.ExitFunc == nil {
		config.ExitFunc = os.Exit
	}
	if config.ExitDelay <= 0 {
		config.ExitDelay = DefaultExitDelay
	}

	return &Controller{
		limit:     config.Limit,
		mode:      mode,
		notifier:  config.Notifier,
		logger:    config.Logger,
		exitFunc:  config.ExitFunc,
		exitDelay: config.ExitDelay,
	}, nil
}

// Evaluate compares the running total against the limit and applies the
// enforcement action if the budget is exceeded.
//
// In soft mode it returns a *BudgetExceededError on every call at or
// over the limit. In warn-only mode it logs on the first trip and always
// returns nil. In hard-exit mode it logs a final spend summary, waits
// ExitDelay, and calls the exit function.
//
// The notification fires at most once per trip, on a detached goroutine,
// so a slow webhook never blocks the caller.
func (c *Controller) Evaluate(ctx context.Context, total float64) error {
	c.mu.Lock()

	if total < c.limit {
		c.mu.Unlock()
		return nil
	}

	firstTrip := !c.tripped
	if firstTrip {
		c.tripped = true
		c.lastTrip = c.newBudgetError(total)
	}
	trip := c.lastTrip
	mode := c.mode
	c.mu.Unlock()

	if firstTrip {
		c.logger.Warn("budget limit exceeded",
			"total_cost", trip.TotalCost,
			"limit", trip.Limit,
			"percent_used", trip.PercentUsed,
			"estimated_savings", trip.EstimatedSavings,
			"mode", string(mode),
		)
		c.notify(*trip)
	}

	switch mode {
	case ModeWarnOnly:
		return nil

	case ModeHardExit:
		if firstTrip {
			c.logger.Error("terminating: hard budget limit reached",
				"total_cost", trip.TotalCost,
				"limit", trip.Limit,
				"estimated_savings", trip.EstimatedSavings,
			)
			time.Sleep(c.exitDelay)
			c.exitFunc(1)
		}
		return trip

	default: // ModeSoft
		return trip
	}
}

// Tripped reports whether the budget has tripped since the last reset.
func (c *Controller) Tripped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripped
}

// Reset returns the controller to the active state. The next Evaluate
// call that exceeds the limit trips and notifies again.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tripped = false
	c.lastTrip = nil
}

// Limit returns the current budget ceiling.
func (c *Controller) Limit() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limit
}

// SetLimit replaces the budget ceiling. The tripped state is preserved:
// raising the limit after a trip does not silently re-arm the budget.
func (c *Controller) SetLimit(limit float64) error {
	if err := validateLimit(limit); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = limit
	return nil
}

// Mode returns the current enforcement mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches the enforcement mode. Accepts the same spellings as
// ParseMode.
func (c *Controller) SetMode(mode string) error {
	parsed, err := ParseMode(mode)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = parsed
	return nil
}

// newBudgetError builds the typed budget error for a trip at the given
// total. Caller must hold c.mu.
func (c *Controller) newBudgetError(total float64) *BudgetExceededError {
	return &BudgetExceededError{
		TotalCost:        total,
		Limit:            c.limit,
		PercentUsed:      total / c.limit * 100,
		EstimatedSavings: EstimateSavings(total, c.limit),
		Timestamp:        time.Now().UTC(),
	}
}

// notify dispatches the one-shot trip notification on its own goroutine.
func (c *Controller) notify(trip BudgetExceededError) {
	if c.notifier == nil {
		return
	}
	n := Notification{
		Text:      trip.Error(),
		Timestamp: trip.Timestamp,
		Cost:      trip.TotalCost,
		Limit:     trip.Limit,
	}
	go c.notifier.Notify(context.Background(), n)
}

// EstimateSavings projects the spend avoided by stopping at the limit.
// The projection assumes the unattended session would have run on to a
// multiple of the configured budget.
func EstimateSavings(total, limit float64) float64 {
	return SavingsMultiple * math.Max(0, limit-total)
}

func validateLimit(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit <= 0 {
		return &InvalidLimitError{Limit: limit}
	}
	return nil
}
