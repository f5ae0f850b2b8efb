// Package watch reloads the content catalog when its source files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lexive/internal/logging"
)

// ReloadFunc rebuilds whatever depends on the watched files.
type ReloadFunc func(ctx context.Context) error

// DefaultDebounce batches the writes of a spreadsheet save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches content directories for .csv and .lexive changes and
// calls the reload function once the changes settle.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dirs        []string
	reload      ReloadFunc
	debounceDur time.Duration
	pending     bool
	lastEvent   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Reloads       int
	Errors        int
	LastEventPath string
	LastReload    time.Time
}

// New creates a Watcher over dirs. A debounce of zero uses DefaultDebounce.
func New(dirs []string, debounce time.Duration, reload ReloadFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:     fw,
		dirs:        dirs,
		reload:      reload,
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block; call Stop to release the
// watcher. Directories that do not exist are skipped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if dir == "" {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			logging.Get(logging.CategoryWatch).Sugar().Warnf("Watcher: cannot watch %s: %v", dir, err)
			continue
		}
		logging.Watch("Watcher: watching directory: %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryWatch).Sugar().Errorf("Watcher: error closing watcher: %v", err)
	}
	logging.Watch("Watcher: stopped")
}

// Stats returns a copy of the activity counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Sugar().Errorf("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// A new guild directory joins the watch list.
	if event.Op&fsnotify.Create != 0 && w.isGuildDir(event.Name) {
		if err := w.watcher.Add(event.Name); err == nil {
			logging.Watch("Watcher: watching new guild directory: %s", event.Name)
		}
	} else if !relevant(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.stats.Events++
	w.stats.LastEventPath = event.Name
	w.mu.Unlock()
	logging.Get(logging.CategoryWatch).Sugar().Debugf("Watcher: %s %s", event.Op, event.Name)
}

func (w *Watcher) processPending(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	err := w.reload(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.stats.Errors++
		logging.Get(logging.CategoryWatch).Sugar().Errorf("Watcher: reload failed, keeping previous content: %v", err)
		return
	}
	w.stats.Reloads++
	w.stats.LastReload = time.Now()
	logging.Watch("Watcher: content reloaded (%d events)", w.stats.Events)
}

func (w *Watcher) isGuildDir(path string) bool {
	if _, err := strconv.Atoi(filepath.Base(path)); err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func relevant(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".lexive":
		return true
	}
	return false
}
