// Package monitor implements the polling core: change detection over a
// session's transcript files, guarded reads, per-file aggregation, and the
// accumulator that owns the running totals and the adaptive poll interval.
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"tokentop/internal/session"
)

const (
	// MinInterval is the hard floor between effective polls, regardless of
	// configuration, to bound filesystem load.
	MinInterval = 2 * time.Second

	// backoffThreshold is the count of consecutive unchanged polls after
	// which the effective interval doubles.
	backoffThreshold = 50
)

// Totals are the running counters for the current monitoring run. They are
// replaced wholesale after a successful re-aggregation, never partially.
type Totals struct {
	InputTokens              int64
	OutputTokens             int64
	CacheReadInputTokens     int64
	CacheCreationInputTokens int64

	// SessionStart is the earliest timestamp seen across all files, as the
	// raw ISO-8601 string from the transcript, or "" before any data.
	SessionStart string

	// LastUpdated is when the totals were last replaced.
	LastUpdated time.Time
}

// Accumulator owns the running totals for one session directory and decides,
// per poll, whether re-aggregation is needed. Poll calls must be serialized
// by the caller; concurrent Totals reads are safe.
type Accumulator struct {
	dir          string
	baseInterval time.Duration
	maxInterval  time.Duration

	reader *safeReader

	mu              sync.Mutex
	totals          Totals
	lastFingerprint string
	interval        time.Duration
	unchangedPolls  int

	now func() time.Time
}

// NewAccumulator builds an accumulator for one session directory. The writer
// probe is selected here, once, for the life of the run.
func NewAccumulator(dir string, baseInterval, maxInterval time.Duration) *Accumulator {
	if baseInterval < MinInterval {
		baseInterval = MinInterval
	}
	if maxInterval < baseInterval {
		maxInterval = baseInterval
	}
	return &Accumulator{
		dir:          dir,
		baseInterval: baseInterval,
		maxInterval:  maxInterval,
		interval:     baseInterval,
		reader:       newSafeReader(newWriterProbe()),
		now:          time.Now,
	}
}

// Dir returns the monitored session directory.
func (a *Accumulator) Dir() string { return a.dir }

// Totals returns a copy of the current running totals.
func (a *Accumulator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totals
}

// Interval returns the current effective poll interval.
func (a *Accumulator) Interval() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interval
}

// Reset zeroes the running totals and the poll state. The next Poll will
// re-aggregate from scratch.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totals = Totals{}
	a.lastFingerprint = ""
	a.unchangedPolls = 0
	a.interval = a.baseInterval
}

// Poll discovers the session's files, checks the fingerprint against the
// previous cycle, and re-aggregates only on change. It reports whether the
// totals were replaced. Aggregation failures never abort the loop: a file
// that cannot be read safely this cycle contributes zero, and the cycle's
// fingerprint is withheld so the next poll re-aggregates even if the file's
// mtime never moves again.
func (a *Accumulator) Poll(ctx context.Context) bool {
	files := session.Locate(a.dir)
	fp := Fingerprint(files)

	a.mu.Lock()
	if fp == a.lastFingerprint {
		a.unchangedPolls++
		if a.unchangedPolls >= backoffThreshold {
			a.unchangedPolls = 0
			doubled := a.interval * 2
			if doubled > a.maxInterval {
				doubled = a.maxInterval
			}
			if doubled != a.interval {
				log.Printf("[monitor] no change in %d polls, backing off to %v", backoffThreshold, doubled)
			}
			a.interval = doubled
		}
		a.mu.Unlock()
		return false
	}
	a.mu.Unlock()

	fresh, skipped := a.aggregate(ctx, files)
	if ctx.Err() != nil {
		// Aborted mid-cycle: keep the previously published totals intact.
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if skipped {
		// A file was gated out this cycle, so these totals undercount it.
		// Leave the fingerprint cleared to force re-aggregation next poll.
		a.lastFingerprint = ""
	} else {
		a.lastFingerprint = fp
	}
	a.unchangedPolls = 0
	a.interval = a.baseInterval
	a.totals = Totals{
		InputTokens:              fresh.InputTokens,
		OutputTokens:             fresh.OutputTokens,
		CacheReadInputTokens:     fresh.CacheReadInputTokens,
		CacheCreationInputTokens: fresh.CacheCreationInputTokens,
		SessionStart:             fresh.EarliestTimestamp,
		LastUpdated:              a.now(),
	}
	return true
}

// aggregate folds every file into fresh sums. Files are independent, so the
// work fans out and the results are combined before publication. It also
// reports whether any file was gated out by the reader this cycle.
func (a *Accumulator) aggregate(ctx context.Context, files []string) (FileTotals, bool) {
	results := make([]FileTotals, len(files))
	read := make([]bool, len(files))

	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			if !a.reader.readable(ctx, path) {
				return
			}
			read[i] = true
			results[i] = aggregateFile(path)
		}(i, path)
	}
	wg.Wait()

	var sum FileTotals
	skipped := false
	for i, r := range results {
		if !read[i] {
			skipped = true
			continue
		}
		sum.add(r)
	}
	return sum, skipped
}
