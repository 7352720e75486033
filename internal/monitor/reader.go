package monitor

import (
	"context"
	"log"
	"os"
	"time"
)

const (
	// maxFileSize is the ceiling above which a transcript is skipped for the
	// cycle rather than parsed.
	maxFileSize = 100 * 1024 * 1024

	// stabilityWindow: a file modified more recently than this is considered
	// still being written.
	stabilityWindow = 1 * time.Second

	stabilityPollStep = 50 * time.Millisecond
	stabilityMaxWait  = 500 * time.Millisecond
)

// safeReader applies the three read gates (size, writer lock, stability)
// before a transcript is parsed.
type safeReader struct {
	probe WriterProbe
	now   func() time.Time
	sleep func(time.Duration)
}

func newSafeReader(probe WriterProbe) *safeReader {
	return &safeReader{probe: probe, now: time.Now, sleep: time.Sleep}
}

// readable reports whether path may be parsed this cycle. A false result is
// not an error: the file simply contributes zero and is retried next poll.
func (r *safeReader) readable(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.Size() > maxFileSize {
		log.Printf("[reader] skipping %s: %d bytes exceeds size ceiling", path, info.Size())
		return false
	}

	deadline := r.now().Add(stabilityMaxWait)
	for {
		if ctx.Err() != nil {
			return false
		}
		if r.stable(path) {
			return true
		}
		if !r.now().Before(deadline) {
			log.Printf("[reader] skipping %s: did not stabilize within %v", path, stabilityMaxWait)
			return false
		}
		r.sleep(stabilityPollStep)
	}
}

// stable is true when the file has no open writer and has not been modified
// within the stability window.
func (r *safeReader) stable(path string) bool {
	if r.probe != nil && r.probe.OpenForWrite(path) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return r.now().Sub(info.ModTime()) >= stabilityWindow
}
