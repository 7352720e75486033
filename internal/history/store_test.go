package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Append(ctx, Snapshot{
			RecordedAt:   base.Add(time.Duration(i) * time.Minute),
			SessionDir:   "/tmp/session",
			InputTokens:  int64(100 * (i + 1)),
			OutputTokens: int64(10 * (i + 1)),
			CostUSD:      0.01 * float64(i+1),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	snaps, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("Recent returned %d rows, want 2", len(snaps))
	}
	if snaps[0].InputTokens != 300 {
		t.Errorf("newest first: InputTokens = %d, want 300", snaps[0].InputTokens)
	}
	if !snaps[0].RecordedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("RecordedAt = %v", snaps[0].RecordedAt)
	}
}

func TestRecent_OrdersSubSecondRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Fractional parts within the same second whose trimmed forms would sort
	// out of order textually (".1" > ".11"). The fixed-width layout keeps the
	// textual ORDER BY chronological.
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, ns := range []int{110_000_000, 100_000_000, 200_000_000} {
		err := store.Append(ctx, Snapshot{
			RecordedAt:  base.Add(time.Duration(ns)),
			SessionDir:  "/tmp/session",
			InputTokens: int64(i + 1),
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	snaps, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []time.Duration{200 * time.Millisecond, 110 * time.Millisecond, 100 * time.Millisecond}
	for i, d := range want {
		if !snaps[i].RecordedAt.Equal(base.Add(d)) {
			t.Errorf("snaps[%d].RecordedAt = %v, want %v", i, snaps[i].RecordedAt, base.Add(d))
		}
	}
}

func TestRecent_Empty(t *testing.T) {
	store := openTestStore(t)
	snaps, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("expected no rows, got %d", len(snaps))
	}
}

func TestAppend_DefaultsRecordedAt(t *testing.T) {
	store := openTestStore(t)
	fixed := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.Append(context.Background(), Snapshot{SessionDir: "/tmp/s"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	snaps, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(snaps) != 1 || !snaps[0].RecordedAt.Equal(fixed) {
		t.Errorf("RecordedAt = %+v, want %v", snaps, fixed)
	}
}
