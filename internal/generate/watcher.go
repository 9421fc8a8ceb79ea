package generate

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andrei91ro/lulu-c/internal/logging"
)

// Watcher regenerates the units whenever the model file, or the feature policy
// file, changes. Each regeneration is an ordinary Run; a failed one leaves the
// previously written units in place.
type Watcher struct {
	params      Params
	debounceDur time.Duration

	// OnResult, when set, is called after every regeneration attempt.
	OnResult func(*Result, error)

	mu      sync.Mutex
	pending time.Time
	stats   WatcherStats
}

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	Events        int
	Regenerations int
	Failures      int
	LastError     error
}

// NewWatcher creates a watcher for the given parameters. Rapid successive
// saves closer than debounce trigger a single regeneration.
func NewWatcher(p Params, debounce time.Duration) (*Watcher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{params: p, debounceDur: debounce}, nil
}

// Stats returns a snapshot of the watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run generates once, then watches until ctx is cancelled. It returns an
// error only if watching cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.Get(logging.CategoryWatch)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// editors often replace files by rename, so watch the directories
	watched := map[string]bool{}
	for _, path := range w.watchedFiles() {
		dir := filepath.Dir(path)
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
		log.Infof("watching %s", dir)
	}

	w.regenerate()

	ticker := time.NewTicker(w.debounceDur / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("watch stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)

		case <-ticker.C:
			if w.due() {
				w.regenerate()
			}
		}
	}
}

func (w *Watcher) watchedFiles() []string {
	files := []string{w.params.ModelPath}
	if w.params.PolicyPath != "" {
		files = append(files, w.params.PolicyPath)
	}
	return files
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	relevant := false
	for _, path := range w.watchedFiles() {
		if filepath.Clean(event.Name) == filepath.Clean(path) {
			relevant = true
			break
		}
	}
	if !relevant {
		return
	}
	logging.Get(logging.CategoryWatch).Debugf("%s: %s", event.Op, event.Name)

	w.mu.Lock()
	w.stats.Events++
	w.pending = time.Now()
	w.mu.Unlock()
}

// due reports whether a change has settled for the debounce duration and
// clears it.
func (w *Watcher) due() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		return false
	}
	w.pending = time.Time{}
	return true
}

func (w *Watcher) regenerate() {
	log := logging.Get(logging.CategoryWatch)

	res, err := Run(w.params)

	w.mu.Lock()
	w.stats.Regenerations++
	if err != nil {
		w.stats.Failures++
		w.stats.LastError = err
	} else {
		w.stats.LastError = nil
	}
	w.mu.Unlock()

	if err != nil {
		log.Errorf("regeneration failed, keeping previous output: %v", err)
	} else {
		log.Infof("regenerated colony %s", res.Colony.Name)
	}
	if w.OnResult != nil {
		w.OnResult(res, err)
	}
}
