package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun_EmitsHintOnTranscriptWrite(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hints := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(ctx, dir, []string{"subagents"}, func() {
			select {
			case hints <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "main.jsonl"), []byte("{}\n"), 0o644)

	select {
	case <-hints:
	case <-time.After(3 * time.Second):
		t.Fatal("no refresh hint after transcript write")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_IgnoresNonTranscriptFiles(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hints := make(chan struct{}, 8)
	go Run(ctx, dir, nil, func() { hints <- struct{}{} })

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	select {
	case <-hints:
		t.Error("unexpected hint for a non-.jsonl file")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestRun_MissingDirReturns(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, func() {})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run should return when the directory cannot be watched")
	}
}
