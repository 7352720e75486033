package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeProbe scripts the lock gate.
type fakeProbe struct {
	locked bool
}

func (p *fakeProbe) OpenForWrite(string) bool { return p.locked }

func agedFile(t *testing.T, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-age)
	os.Chtimes(path, old, old)
	return path
}

func TestReadable_StableFile(t *testing.T) {
	path := agedFile(t, "a.jsonl", time.Minute)
	r := newSafeReader(&fakeProbe{})

	if !r.readable(context.Background(), path) {
		t.Error("a quiet, unlocked file should be readable")
	}
}

func TestReadable_MissingFile(t *testing.T) {
	r := newSafeReader(&fakeProbe{})
	if r.readable(context.Background(), filepath.Join(t.TempDir(), "gone.jsonl")) {
		t.Error("missing file should not be readable")
	}
}

func TestReadable_LockedFileTimesOut(t *testing.T) {
	path := agedFile(t, "a.jsonl", time.Minute)
	r := newSafeReader(&fakeProbe{locked: true})
	r.sleep = func(time.Duration) {} // no real waiting in tests

	start := time.Now()
	clock := start
	r.now = func() time.Time {
		clock = clock.Add(stabilityPollStep)
		return clock
	}

	if r.readable(context.Background(), path) {
		t.Error("file with a persistent writer should be skipped for the cycle")
	}
}

func TestReadable_RecentlyModifiedTimesOut(t *testing.T) {
	path := agedFile(t, "a.jsonl", 0) // mtime now: inside the stability window
	r := newSafeReader(&fakeProbe{})
	r.sleep = func(time.Duration) {}

	clock := time.Now()
	r.now = func() time.Time {
		clock = clock.Add(stabilityPollStep)
		return clock
	}

	// The scripted clock advances only ~50ms per check, so the 1s stability
	// window never elapses before the 500ms bound expires.
	if r.readable(context.Background(), path) {
		t.Error("file modified within the stability window should be skipped")
	}
}

func TestReadable_SizeGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	// Sparse file: the size gate only consults Stat.
	if err := f.Truncate(maxFileSize + 1); err != nil {
		f.Close()
		t.Skipf("cannot create sparse file: %v", err)
	}
	f.Close()
	old := time.Now().Add(-time.Minute)
	os.Chtimes(path, old, old)

	r := newSafeReader(&fakeProbe{})
	if r.readable(context.Background(), path) {
		t.Error("oversized file should be skipped")
	}
}

func TestReadable_CancelledContext(t *testing.T) {
	path := agedFile(t, "a.jsonl", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newSafeReader(&fakeProbe{})
	if r.readable(ctx, path) {
		t.Error("cancelled context should stop the gate check")
	}
}
