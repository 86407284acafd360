package ledger

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	r, err := NewRedis(RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis failed: %v", err)
	}
	t.Cleanup(func() { r.Close() })

	return r, mr
}

func TestRedis_InvalidURL(t *testing.T) {
	if _, err := NewRedis(RedisConfig{URL: "not-a-url"}); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestRedis_UnreachableAtInit(t *testing.T) {
	if _, err := NewRedis(RedisConfig{URL: "redis://127.0.0.1:1"}); err == nil {
		t.Error("Expected error for unreachable store")
	}
}

func TestRedis_IncrementAccumulates(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	if got := r.Increment(ctx, 5.00); math.Abs(got-5.00) > 1e-9 {
		t.Errorf("Expected 5.00, got %.2f", got)
	}
	if got := r.Increment(ctx, 5.00); math.Abs(got-10.00) > 1e-9 {
		t.Errorf("Expected 10.00, got %.2f", got)
	}

	total, ok := r.Total(ctx)
	if !ok {
		t.Fatal("Expected total to be readable")
	}
	if math.Abs(total-10.00) > 1e-9 {
		t.Errorf("Expected total 10.00, got %.2f", total)
	}
}

func TestRedis_CounterCarriesTTL(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	r.Increment(ctx, 1.00)

	if ttl := mr.TTL(DefaultKey); ttl <= 0 {
		t.Errorf("Expected bounded TTL on shared counter, got %v", ttl)
	}
}

func TestRedis_SharedAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewRedis(RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	b, err := NewRedis(RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	a.Increment(ctx, 4.00)
	got := b.Increment(ctx, 6.00)

	if math.Abs(got-10.00) > 1e-9 {
		t.Errorf("Expected shared total 10.00, got %.2f", got)
	}
}

func TestRedis_DegradesToLocalOnFailure(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()

	r.Increment(ctx, 5.00)

	// Store goes away mid-session
	mr.Close()

	got := r.Increment(ctx, 5.00)
	if math.Abs(got-10.00) > 1e-9 {
		t.Errorf("Expected mirrored total 10.00 after store failure, got %.2f", got)
	}
	if !r.Degraded() {
		t.Error("Expected ledger to be degraded")
	}

	// After degradation, totals come from the mirror and stay available
	total, ok := r.Total(ctx)
	if !ok {
		t.Fatal("Expected total available after degradation")
	}
	if math.Abs(total-10.00) > 1e-9 {
		t.Errorf("Expected 10.00, got %.2f", total)
	}
}

func TestRedis_NoLostUpdatesWhileDegraded(t *testing.T) {
	r, mr := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Increment(ctx, 1.00)
			}
		}()
	}
	wg.Wait()

	total, ok := r.Total(ctx)
	if !ok {
		t.Fatal("Expected total available")
	}
	if math.Abs(total-500.00) > 1e-9 {
		t.Errorf("Expected 500.00, got %.2f", total)
	}
}

func TestRedis_Reset(t *testing.T) {
	r, _ := newTestRedis(t)
	ctx := context.Background()

	r.Increment(ctx, 25.00)
	r.Reset(ctx)

	total, ok := r.Total(ctx)
	if !ok {
		t.Fatal("Expected total readable after reset")
	}
	if total != 0 {
		t.Errorf("Expected 0 after reset, got %.2f", total)
	}
}

func TestRedis_EmptyKeyReadsZero(t *testing.T) {
	r, _ := newTestRedis(t)

	total, ok := r.Total(context.Background())
	if !ok {
		t.Fatal("Expected missing key to read as zero, not unavailable")
	}
	if total != 0 {
		t.Errorf("Expected 0 for missing key, got %.2f", total)
	}
}
