// Package watch reports settled file changes in a directory.
//
// Editors save files in bursts (truncate, write, rename, chmod). The watcher
// collects fsnotify events per path and delivers a path only after it has
// been quiet for the debounce interval, so one save produces one callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/fractal"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 200 * time.Millisecond

// ErrRunning is returned by Start on a watcher that is already running.
var ErrRunning = errors.New("watch: already running")

// Filter selects the paths a watcher reports. A nil filter accepts all.
type Filter func(path string) bool

// Ext returns a filter accepting files with one of the given extensions.
func Ext(exts ...string) Filter {
	return func(path string) bool {
		return slices.Contains(exts, filepath.Ext(path))
	}
}

// Watcher watches a single directory (not recursively).
type Watcher struct {
	dir      string
	debounce time.Duration
	filter   Filter

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// New creates a watcher for dir. Nothing is watched until Start.
func New(dir string, debounce time.Duration, filter Filter) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		filter:   filter,
		pending:  make(map[string]time.Time),
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Start begins watching and returns immediately. onChange is called from the
// watcher goroutine with the sorted paths that settled since the last call.
// The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context, onChange func(paths []string)) error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		return ErrRunning
	}
	// reap a run that ended with its context
	w.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch: add %s: %w", w.dir, err)
	}

	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	clear(w.pending)

	go w.run(ctx, fsw, w.stopCh, w.doneCh, onChange)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stopCh, doneCh := w.stopCh, w.doneCh
	w.stopCh, w.doneCh = nil, nil
	w.running = false
	w.mu.Unlock()
	if doneCh == nil {
		return
	}

	close(stopCh)
	<-doneCh
}

// Running reports whether the watcher goroutine is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, stopCh, doneCh chan struct{}, onChange func([]string)) {
	defer close(doneCh)
	defer fsw.Close()

	tick := time.NewTicker(w.debounce / 4)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-stopCh:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.record(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		case now := <-tick.C:
			if paths := w.settled(now); len(paths) > 0 && onChange != nil {
				onChange(paths)
			}
		}
	}
}

// reportError logs a watcher error. Watching continues.
func (w *Watcher) reportError(err error) {
	fractal.Logger().Warn("watch: fsnotify error", "dir", w.dir, "err", err)
}

func (w *Watcher) record(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if w.filter != nil && !w.filter(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns the paths quiet for at least the debounce.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(out)
	return out
}
