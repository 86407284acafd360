package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dipampaul17/AgentGuard/pkg/attribution"
)

// Journal persists attributed calls to a local SQLite database.
//
// Appends are serialized through a single connection; reads take a
// shared lock. The journal is safe for concurrent use.
type Journal struct {
	db                 *sql.DB
	path               string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	appendStmt *sql.Stmt
	listStmt   *sql.Stmt
	clearStmt  *sql.Stmt
	totalStmt  *sql.Stmt
}

// Config configures a Journal.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// CheckpointInterval is how often to run a passive WAL checkpoint.
	// Default: 5 minutes.
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// Open opens or creates a journal database at the configured path.
func Open(cfg Config) (*Journal, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &Journal{
		db:                 db,
		path:               cfg.Path,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	if err := j.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare journal statements: %w", err)
	}

	go j.checkpointLoop()

	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attributed_calls (
		id TEXT PRIMARY KEY,
		observed_at INTEGER NOT NULL,
		model TEXT NOT NULL,
		input_units INTEGER NOT NULL,
		output_units INTEGER NOT NULL,
		cost REAL NOT NULL,
		source_url TEXT,
		shape TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_observed_at ON attributed_calls(observed_at);
	CREATE INDEX IF NOT EXISTS idx_model ON attributed_calls(model);
	`

	_, err := j.db.Exec(schema)
	return err
}

func (j *Journal) prepareStatements() error {
	var err error

	j.appendStmt, err = j.db.Prepare(`
		INSERT INTO attributed_calls (id, observed_at, model, input_units, output_units, cost, source_url, shape)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare append statement: %w", err)
	}

	j.listStmt, err = j.db.Prepare(`
		SELECT id, observed_at, model, input_units, output_units, cost, source_url, shape
		FROM attributed_calls
		ORDER BY observed_at, id
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	j.clearStmt, err = j.db.Prepare(`DELETE FROM attributed_calls`)
	if err != nil {
		return fmt.Errorf("failed to prepare clear statement: %w", err)
	}

	j.totalStmt, err = j.db.Prepare(`SELECT COALESCE(SUM(cost), 0) FROM attributed_calls`)
	if err != nil {
		return fmt.Errorf("failed to prepare total statement: %w", err)
	}

	return nil
}

// Append persists one attributed call.
func (j *Journal) Append(ctx context.Context, call attribution.AttributedCall) error {
	if call.ID == "" {
		return fmt.Errorf("call id cannot be empty")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.appendStmt.ExecContext(ctx,
		call.ID,
		call.Timestamp.UnixMilli(),
		call.Model,
		call.InputUnits,
		call.OutputUnits,
		call.Cost,
		call.SourceURL,
		string(call.Shape),
	)
	if err != nil {
		return fmt.Errorf("failed to append call: %w", err)
	}

	return nil
}

// List returns all journaled calls in observation order.
func (j *Journal) List(ctx context.Context) ([]attribution.AttributedCall, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	var calls []attribution.AttributedCall
	for rows.Next() {
		var (
			call       attribution.AttributedCall
			observedAt int64
			shape      string
		)
		if err := rows.Scan(&call.ID, &observedAt, &call.Model, &call.InputUnits,
			&call.OutputUnits, &call.Cost, &call.SourceURL, &shape); err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		call.Timestamp = time.UnixMilli(observedAt).UTC()
		call.Shape = attribution.Shape(shape)
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call rows: %w", err)
	}

	return calls, nil
}

// TotalCost returns the summed cost of all journaled calls.
func (j *Journal) TotalCost(ctx context.Context) (float64, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var total float64
	if err := j.totalStmt.QueryRowContext(ctx).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum costs: %w", err)
	}
	return total, nil
}

// Clear removes all journaled calls. Used on reset and disable.
func (j *Journal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.clearStmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}
	return nil
}

// Close releases the journal's resources. Idempotent.
func (j *Journal) Close() error {
	var closeErr error

	j.closeOnce.Do(func() {
		close(j.done)

		if j.appendStmt != nil {
			j.appendStmt.Close()
		}
		if j.listStmt != nil {
			j.listStmt.Close()
		}
		if j.clearStmt != nil {
			j.clearStmt.Close()
		}
		if j.totalStmt != nil {
			j.totalStmt.Close()
		}

		if j.db != nil {
			_, _ = j.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = j.db.Close()
		}
	})

	return closeErr
}

func (j *Journal) checkpointLoop() {
	ticker := time.NewTicker(j.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = j.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-j.done:
			return
		}
	}
}
