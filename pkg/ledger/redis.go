package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dipampaul17/AgentGuard/pkg/telemetry/logging"
)

const (
	// DefaultKey is the shared counter key when none is configured.
	DefaultKey = "agentguard:budget:total"

	// DefaultTTL bounds the shared counter's lifetime so abandoned
	// sessions do not inflate future runs that reuse the key.
	DefaultTTL = 24 * time.Hour

	// opTimeout bounds each store round-trip so a slow store cannot
	// stall the attribution path.
	opTimeout = 2 * time.Second
)

// RedisConfig configures a shared Redis ledger.
type RedisConfig struct {
	// URL is the store address, e.g. redis://localhost:6379/0. Required.
	URL string

	// Key is the shared counter key. Default: DefaultKey. Deployments
	// sharing one budget must agree on this key.
	Key string

	// TTL is the counter expiry, refreshed on every increment.
	// Default: DefaultTTL.
	TTL time.Duration

	// Logger receives degradation warnings. Default: logging.Nop().
	Logger *logging.Logger
}

// Redis is a shared ledger backed by an external Redis counter.
//
// Every increment is mirrored into a local accumulator; on the first store
// failure the ledger degrades to the mirror for the remainder of the
// session, so no increment is ever lost.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logging.Logger

	// mirror receives every increment and becomes authoritative after
	// degradation.
	mirror *Local

	degraded atomic.Bool
	warnOnce sync.Once
}

// NewRedis creates a shared ledger and verifies connectivity.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse shared ledger URL: %w", err)
	}

	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to shared ledger: %w", err)
	}

	return &Redis{
		client: client,
		key:    cfg.Key,
		ttl:    cfg.TTL,
		logger: cfg.Logger,
		mirror: NewLocal(),
	}, nil
}

// Increment atomically adds cost to the shared counter and returns the new
// shared total. On store failure it degrades to the local mirror and
// returns the mirrored total instead; the degradation is logged once.
func (r *Redis) Increment(ctx context.Context, cost float64) float64 {
	localTotal := r.mirror.Increment(ctx, cost)

	if r.degraded.Load() {
		return localTotal
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipe := r.client.Pipeline()
	incr := pipe.IncrByFloat(opCtx, r.key, cost)
	pipe.Expire(opCtx, r.key, r.ttl)

	if _, err := pipe.Exec(opCtx); err != nil {
		r.degrade(err)
		return localTotal
	}

	return incr.Val()
}

// Total returns the shared total, or the mirrored total after degradation.
// ok is false only while the ledger is healthy but the read failed; a
// transient read failure does not degrade the session.
func (r *Redis) Total(ctx context.Context) (float64, bool) {
	if r.degraded.Load() {
		return r.mirror.Total(ctx)
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := r.client.Get(opCtx, r.key).Float64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return val, true
}

// Reset zeroes the shared counter and the local mirror.
func (r *Redis) Reset(ctx context.Context) {
	r.mirror.Reset(ctx)

	if r.degraded.Load() {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.client.Del(opCtx, r.key).Err(); err != nil {
		r.degrade(err)
	}
}

// Close releases the store connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Degraded reports whether the ledger has fallen back to local accounting.
func (r *Redis) Degraded() bool {
	return r.degraded.Load()
}

// degrade switches to local accounting for the remainder of the session.
func (r *Redis) degrade(err error) {
	r.degraded.Store(true)
	r.warnOnce.Do(func() {
		r.logger.Warn("shared ledger unreachable, falling back to local accounting for this session",
			"error", err)
	})
}
