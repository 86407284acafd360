package guard

import (
	"context"
	"sync"
	"time"

	"github.com/dipampaul17/AgentGuard/pkg/attribution"
	"github.com/dipampaul17/AgentGuard/pkg/enforcement"
	"github.com/dipampaul17/AgentGuard/pkg/guard/journal"
	"github.com/dipampaul17/AgentGuard/pkg/ledger"
	"github.com/dipampaul17/AgentGuard/pkg/pricing"
	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// DefaultInstance is the metrics label used when Config.Instance is empty.
const DefaultInstance = "default"

// Config configures a Guard.
type Config struct {
	// Limit is the budget ceiling in USD. Required; must be a positive
	// finite number.
	Limit float64

	// Mode selects the trip behavior: "soft", "hard_exit", or
	// "warn_only". Defaults to "soft".
	Mode string

	// Webhook is an optional notification target URL, delivered a
	// one-shot JSON POST when the budget trips.
	Webhook string

	// Silent suppresses the per-call spend readout log line.
	Silent bool

	// SharedLedgerURL enables shared-budget mode: a Redis URL
	// (redis://...) whose counter is shared across processes. Empty
	// selects in-process accounting.
	SharedLedgerURL string

	// Privacy strips payload content previews from retained call-log
	// entries.
	Privacy bool

	// Disabled creates the guard switched off. A disabled guard
	// attributes nothing until Enable is called.
	Disabled bool

	// JournalPath enables the on-disk SQLite spend journal. Empty
	// disables journaling.
	JournalPath string

	// PriceURL is an optional remote price feed for UpdatePrices.
	PriceURL string

	// PriceCachePath is the on-disk price snapshot location used by
	// the refresher.
	PriceCachePath string

	// PriceOverrides seeds the price table on top of the bundled
	// defaults.
	PriceOverrides map[string]pricing.Entry

	// Tokenizer optionally provides exact token counts for the
	// attributor. Nil selects the heuristic estimator.
	Tokenizer attribution.Tokenizer

	// Notifier overrides the webhook notifier. Mostly for tests.
	Notifier enforcement.Notifier

	// Instance labels this guard's metrics. Defaults to
	// DefaultInstance.
	Instance string

	// Logger for guard events. Defaults to a no-op logger.
	Logger *logging.Logger

	// ExitFunc and ExitDelay tune hard-exit behavior. See
	// enforcement.Config.
	ExitFunc  func(code int)
	ExitDelay time.Duration
}

// Guard is a cost governor instance.
//
// All methods are safe for concurrent use.
type Guard struct {
	logger     *logging.Logger
	table      *pricing.Table
	attributor *attribution.Attributor
	controller *enforcement.Controller
	refresher  *pricing.Refresher
	journal    *journal.Journal
	metrics    *Metrics
	redactor   *logging.Redactor
	instance   string
	silent     bool
	privacy    bool

	books       ledger.Ledger
	sharedBooks *ledger.Redis

	mu               sync.RWMutex
	enabled          bool
	callLog          []attribution.AttributedCall
	fallbackReported bool
}

// New creates a Guard from the configuration.
//
// A shared ledger that cannot be reached at startup is downgraded to
// local accounting with a warning rather than failing construction;
// the guard must never block the workload it meters.
func New(cfg Config) (*Guard, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	instance := cfg.Instance
	if instance == "" {
		instance = DefaultInstance
	}

	table := pricing.NewTable(cfg.PriceOverrides)

	notifier := cfg.Notifier
	if notifier == nil && cfg.Webhook != "" {
		notifier = enforcement.NewWebhookNotifier(enforcement.WebhookConfig{
			URL:    cfg.Webhook,
			Logger: logger,
		})
	}

	controller, err := enforcement.NewController(enforcement.Config{
		Limit:     cfg.Limit,
		Mode:      enforcement.Mode(cfg.Mode),
		Notifier:  notifier,
		Logger:    logger,
		ExitFunc:  cfg.ExitFunc,
		ExitDelay: cfg.ExitDelay,
	})
	if err != nil {
		return nil, err
	}

	g := &Guard{
		logger:     logger,
		table:      table,
		controller: controller,
		metrics:    NewMetrics(),
		redactor:   logging.NewRedactor(),
		instance:   instance,
		silent:     cfg.Silent,
		privacy:    cfg.Privacy,
		enabled:    !cfg.Disabled,
		books:      ledger.NewLocal(),
	}

	g.attributor = attribution.NewAttributor(attribution.Config{
		Table:     table,
		Tokenizer: cfg.Tokenizer,
		Logger:    logger,
	})

	if cfg.SharedLedgerURL != "" {
		shared, err := ledger.NewRedis(ledger.RedisConfig{
			URL:    cfg.SharedLedgerURL,
			Logger: logger,
		})
		if err != nil {
			logger.Warn("shared ledger unavailable, using local accounting", "error", err)
			g.metrics.RecordLedgerFallback(instance)
			g.fallbackReported = true
		} else {
			g.books = shared
			g.sharedBooks = shared
		}
	}

	if cfg.PriceURL != "" || cfg.PriceCachePath != "" {
		g.refresher = pricing.NewRefresher(table, pricing.RefresherConfig{
			URL:       cfg.PriceURL,
			CachePath: cfg.PriceCachePath,
			Logger:    logger,
		})
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(journal.Config{Path: cfg.JournalPath})
		if err != nil {
			return nil, err
		}
		g.journal = j
	}

	return g, nil
}

// Observe attributes a cost to one raw response payload and applies
// budget enforcement against the updated total.
//
// Returns the attributed call, or nil when the guard is disabled or
// the payload does not look like an API response. The error is non-nil
// only for a soft-mode budget trip, as a *enforcement.BudgetExceededError.
func (g *Guard) Observe(ctx context.Context, payload interface{}, modelHint, sourceURL string) (*attribution.AttributedCall, error) {
	g.mu.RLock()
	enabled := g.enabled
	g.mu.RUnlock()
	if !enabled {
		return nil, nil
	}

	call := g.attributor.Attribute(payload, modelHint, sourceURL)
	if call == nil {
		return nil, nil
	}

	if g.privacy {
		call.Preview = ""
	} else {
		call.Preview = g.redactor.Redact(call.Preview)
	}

	g.mu.Lock()
	g.callLog = append(g.callLog, *call)
	g.mu.Unlock()

	if g.journal != nil {
		if err := g.journal.Append(ctx, *call); err != nil {
			g.logger.Warn("spend journal append failed", "error", err)
		}
	}

	total := g.books.Increment(ctx, call.Cost)
	g.noteFallback()

	g.metrics.RecordCall(g.instance, string(call.Shape), call.Model, call.Cost)
	g.metrics.UpdateUsage(g.instance, total, g.controller.Limit())

	if !g.silent {
		g.logger.Info("call attributed",
			"model", call.Model,
			"input_units", call.InputUnits,
			"output_units", call.OutputUnits,
			"cost", call.Cost,
			"total", total,
		)
	}

	wasTripped := g.controller.Tripped()
	err := g.controller.Evaluate(ctx, total)
	if !wasTripped && g.controller.Tripped() {
		g.metrics.RecordTrip(g.instance, string(g.controller.Mode()))
	}

	return call, err
}

// GetCost returns the running total in USD.
func (g *Guard) GetCost(ctx context.Context) float64 {
	total, ok := g.books.Total(ctx)
	if !ok {
		g.logger.Warn("ledger total temporarily unavailable")
	}
	g.noteFallback()
	return total
}

// GetLimit returns the budget ceiling in USD.
func (g *Guard) GetLimit() float64 {
	return g.controller.Limit()
}

// SetLimit replaces the budget ceiling.
func (g *Guard) SetLimit(limit float64) error {
	return g.controller.SetLimit(limit)
}

// SetMode switches the enforcement mode.
func (g *Guard) SetMode(mode string) error {
	return g.controller.SetMode(mode)
}

// Tripped reports whether the budget has tripped since the last reset.
func (g *Guard) Tripped() bool {
	return g.controller.Tripped()
}

// GetLogs returns a defensive copy of the call log in append order.
func (g *Guard) GetLogs() []attribution.AttributedCall {
	g.mu.RLock()
	defer g.mu.RUnlock()
	logs := make([]attribution.AttributedCall, len(g.callLog))
	copy(logs, g.callLog)
	return logs
}

// Reset zeroes the total, clears the call log and journal, and returns
// the controller to the active state.
func (g *Guard) Reset(ctx context.Context) {
	g.books.Reset(ctx)
	g.controller.Reset()

	g.mu.Lock()
	g.callLog = nil
	g.mu.Unlock()

	if g.journal != nil {
		if err := g.journal.Clear(ctx); err != nil {
			g.logger.Warn("spend journal clear failed", "error", err)
		}
	}

	g.metrics.UpdateUsage(g.instance, 0, g.controller.Limit())
	g.logger.Info("budget reset")
}

// Disable switches the guard off and clears accumulated state so stale
// totals cannot resurface on a later Enable.
func (g *Guard) Disable(ctx context.Context) {
	g.mu.Lock()
	g.enabled = false
	g.mu.Unlock()

	g.Reset(ctx)
	g.logger.Info("guard disabled")
}

// Enable switches a disabled guard back on.
func (g *Guard) Enable() {
	g.mu.Lock()
	g.enabled = true
	g.mu.Unlock()
}

// Enabled reports whether the guard is attributing calls.
func (g *Guard) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// UpdatePrices refreshes the price table from the configured remote
// feed and snapshot cache. A guard without a price source logs and
// returns.
func (g *Guard) UpdatePrices(ctx context.Context) {
	if g.refresher == nil {
		g.logger.Debug("no price refresh source configured")
		return
	}
	g.refresher.Refresh(ctx)
}

// StartPriceAutoRefresh begins hourly background price refreshes.
// The returned function stops them. A guard without a price source
// returns a no-op stop.
func (g *Guard) StartPriceAutoRefresh() func() {
	if g.refresher == nil {
		return func() {}
	}
	return g.refresher.StartAutoRefresh()
}

// PriceTable returns the guard's live price table.
func (g *Guard) PriceTable() *pricing.Table {
	return g.table
}

// Close releases the guard's resources: the spend journal and the
// shared-ledger connection, when present.
func (g *Guard) Close() error {
	var firstErr error
	if g.journal != nil {
		if err := g.journal.Close(); err != nil {
			firstErr = err
		}
	}
	if g.sharedBooks != nil {
		if err := g.sharedBooks.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// noteFallback records the shared-ledger degradation metric the first
// time the ledger reports it.
func (g *Guard) noteFallback() {
	if g.sharedBooks == nil || !g.sharedBooks.Degraded() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.fallbackReported {
		g.fallbackReported = true
		g.metrics.RecordLedgerFallback(g.instance)
	}
}
