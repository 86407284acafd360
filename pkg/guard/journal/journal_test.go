package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dipampaul17/AgentGuard/pkg/attribution"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(Config{Path: filepath.Join(t.TempDir(), "guard.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func testCall(id string, cost float64) attribution.AttributedCall {
	return attribution.AttributedCall{
		ID:          id,
		Timestamp:   time.Now().UTC(),
		Model:       "gpt-4",
		InputUnits:  100,
		OutputUnits: 50,
		Cost:        cost,
		SourceURL:   "https://api.openai.com/v1/chat/completions",
		Shape:       attribution.ShapeUsage,
	}
}

func TestAppendAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Append(ctx, testCall("call-1", 0.05)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := j.Append(ctx, testCall("call-2", 0.10)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	calls, err := j.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("List returned %d calls, want 2", len(calls))
	}
	if calls[0].ID != "call-1" || calls[1].ID != "call-2" {
		t.Errorf("calls out of order: %q, %q", calls[0].ID, calls[1].ID)
	}
	if calls[0].Model != "gpt-4" {
		t.Errorf("Model = %q, want gpt-4", calls[0].Model)
	}
	if calls[0].Shape != attribution.ShapeUsage {
		t.Errorf("Shape = %q, want %q", calls[0].Shape, attribution.ShapeUsage)
	}
	if calls[0].InputUnits != 100 || calls[0].OutputUnits != 50 {
		t.Errorf("units = %d/%d, want 100/50", calls[0].InputUnits, calls[0].OutputUnits)
	}
}

func TestAppendRejectsEmptyID(t *testing.T) {
	j := openTestJournal(t)

	call := testCall("", 0.05)
	if err := j.Append(context.Background(), call); err == nil {
		t.Error("Append with empty id: expected error")
	}
}

func TestTotalCost(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	total, err := j.TotalCost(ctx)
	if err != nil {
		t.Fatalf("TotalCost on empty journal: %v", err)
	}
	if total != 0 {
		t.Errorf("empty journal total = %v, want 0", total)
	}

	_ = j.Append(ctx, testCall("call-1", 0.05))
	_ = j.Append(ctx, testCall("call-2", 0.10))

	total, err = j.TotalCost(ctx)
	if err != nil {
		t.Fatalf("TotalCost: %v", err)
	}
	if diff := total - 0.15; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total = %v, want 0.15", total)
	}
}

func TestClear(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	_ = j.Append(ctx, testCall("call-1", 0.05))
	if err := j.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	calls, err := j.List(ctx)
	if err != nil {
		t.Fatalf("List after clear: %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("List after clear returned %d calls, want 0", len(calls))
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guard.db")
	ctx := context.Background()

	j, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Append(ctx, testCall("call-1", 0.25)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	j2, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	calls, err := j2.List(ctx)
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(calls) != 1 || calls[0].ID != "call-1" {
		t.Fatalf("journal did not persist across reopen: %+v", calls)
	}
}

func TestCloseIdempotent(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
