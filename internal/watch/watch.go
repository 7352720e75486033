// Package watch emits refresh hints when transcript files change, so the
// dashboard reacts faster than the poll cadence. Hints are advisory only;
// the poller's fingerprint still decides whether any work happens.
package watch

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events an appending writer generates.
const debounce = 250 * time.Millisecond

// Run watches sessionDir (and its subagents/ subdirectory when present) and
// invokes onChange at most once per debounce window. It blocks until the
// context is cancelled. A failure to set up the watcher is logged and Run
// returns: polling alone still keeps the dashboard correct.
func Run(ctx context.Context, sessionDir string, subdirs []string, onChange func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[watch] unavailable, relying on polling: %v", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(sessionDir); err != nil {
		log.Printf("[watch] cannot watch %s: %v", sessionDir, err)
		return
	}
	for _, sub := range subdirs {
		// The subdirectory may not exist yet; that is fine.
		if err := watcher.Add(filepath.Join(sessionDir, sub)); err != nil {
			log.Printf("[watch] cannot watch %s/%s: %v", sessionDir, sub, err)
		}
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".jsonl" {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] %v", err)
		case <-timerC:
			timer = nil
			timerC = nil
			onChange()
		}
	}
}
