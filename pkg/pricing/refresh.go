package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

// DefaultSnapshotFreshness is how long a disk snapshot is considered current.
// Within this window a refresh reuses the snapshot instead of fetching.
const DefaultSnapshotFreshness = time.Hour

// snapshotFile is the on-disk price cache format. Prices round-trip through
// JSON unchanged.
type snapshotFile struct {
	// Timestamp is when the snapshot was written, epoch milliseconds.
	Timestamp int64 `json:"timestamp"`

	// Prices is the fetched price map at snapshot time.
	Prices map[string]Entry `json:"prices"`
}

// RefresherConfig configures a price Refresher.
type RefresherConfig struct {
	// URL is the remote price endpoint. It must serve a JSON object mapping
	// model identifiers to {"input": x, "output": y} per-1K prices.
	URL string

	// CachePath is where the snapshot file is written. Empty disables the
	// disk cache.
	CachePath string

	// Freshness is how long a snapshot is reused before refetching.
	// Default: DefaultSnapshotFreshness.
	Freshness time.Duration

	// HTTPTimeout bounds the remote fetch. Default: 10 seconds.
	HTTPTimeout time.Duration

	// Logger receives refresh warnings. Default: logging.Nop().
	Logger *logging.Logger
}

// Refresher fetches newer prices from a remote source and merges them into
// a Table. All failures are swallowed and logged: the table always retains
// its last known prices.
type Refresher struct {
	table     *Table
	url       string
	cachePath string
	freshness time.Duration
	client    *http.Client
	logger    *logging.Logger
}

// NewRefresher creates a refresher for the given table.
func NewRefresher(table *Table, cfg RefresherConfig) *Refresher {
	if cfg.Freshness <= 0 {
		cfg.Freshness = DefaultSnapshotFreshness
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return &Refresher{
		table:     table,
		url:       cfg.URL,
		cachePath: cfg.CachePath,
		freshness: cfg.Freshness,
		client:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:    cfg.Logger,
	}
}

// Refresh obtains newer prices and merges them into the table.
//
// A fresh disk snapshot is reused without touching the network. Otherwise
// the remote endpoint is fetched and a new snapshot written. Any failure
// (network, parse, I/O) leaves the table untouched and is only logged;
// Refresh never reports errors to the caller.
func (r *Refresher) Refresh(ctx context.Context) {
	if prices, ok := r.loadSnapshot(); ok {
		r.table.Merge(prices)
		return
	}

	prices, err := r.fetch(ctx)
	if err != nil {
		r.logger.Warn("price refresh failed, keeping existing table", "error", err)
		return
	}

	r.table.Merge(prices)
	r.writeSnapshot(prices)
}

// StartAutoRefresh schedules an hourly background refresh and runs one
// immediately. The returned stop function cancels the schedule.
func (r *Refresher) StartAutoRefresh() func() {
	c := cron.New()

	// cron.AddFunc only fails on spec parse errors; "@hourly" is constant.
	_, _ = c.AddFunc("@hourly", func() {
		r.Refresh(context.Background())
	})

	go r.Refresh(context.Background())
	c.Start()

	return func() {
		ctx := c.Stop()
		<-ctx.Done()
	}
}

// fetch retrieves the remote price map.
func (r *Refresher) fetch(ctx context.Context) (map[string]Entry, error) {
	if r.url == "" {
		return nil, fmt.Errorf("no price URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read price response: %w", err)
	}

	var prices map[string]Entry
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("failed to parse price response: %w", err)
	}

	if len(prices) == 0 {
		return nil, fmt.Errorf("price endpoint returned empty table")
	}

	return prices, nil
}

// loadSnapshot reads the disk snapshot if it exists and is still fresh.
func (r *Refresher) loadSnapshot() (map[string]Entry, bool) {
	if r.cachePath == "" {
		return nil, false
	}

	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return nil, false
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		r.logger.Warn("ignoring corrupt price snapshot", "path", r.cachePath, "error", err)
		return nil, false
	}

	age := time.Since(time.UnixMilli(snap.Timestamp))
	if age < 0 || age > r.freshness {
		return nil, false
	}

	if len(snap.Prices) == 0 {
		return nil, false
	}

	return snap.Prices, true
}

// writeSnapshot persists fetched prices for reuse across initializations.
func (r *Refresher) writeSnapshot(prices map[string]Entry) {
	if r.cachePath == "" {
		return
	}

	snap := snapshotFile{
		Timestamp: time.Now().UnixMilli(),
		Prices:    prices,
	}

	data, err := json.Marshal(snap)
	if err != nil {
		r.logger.Warn("failed to encode price snapshot", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0o755); err != nil {
		r.logger.Warn("failed to create snapshot directory", "error", err)
		return
	}

	// Write-then-rename so a crash never leaves a torn snapshot.
	tmp := r.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.logger.Warn("failed to write price snapshot", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, r.cachePath); err != nil {
		r.logger.Warn("failed to install price snapshot", "path", r.cachePath, "error", err)
	}
}
