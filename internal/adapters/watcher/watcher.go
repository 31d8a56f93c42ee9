// Package watcher notices edits to the configuration file so the catalog can be reloaded.
package watcher

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigWatcher = (*Watcher)(nil)

// DefaultWindow is how long the file must stay quiet before a change is reported.
const DefaultWindow = 200 * time.Millisecond

// Watcher implements ports.ConfigWatcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    ports.Logger
	path      string

	mu      sync.Mutex
	closed  bool
	changes chan string
}

// New creates a watcher that coalesces changes within window.
func New(window time.Duration, logger ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	w := &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		changes:   make(chan string, 1),
	}
	w.debouncer = NewDebouncer(window, w.emit)
	return w, nil
}

// Start begins watching path.
func (w *Watcher) Start(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "cannot resolve configuration path"), "path", path)
	}
	w.path = abs

	// Editors often save by renaming a temporary file over the original,
	// which only shows up as an event on the parent directory.
	if err := w.fsWatcher.Add(filepath.Dir(abs)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch configuration"), "path", abs)
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Changes yields the watched path after each burst of edits.
func (w *Watcher) Changes() iter.Seq[string] {
	return func(yield func(string) bool) {
		for path := range w.changes {
			if !yield(path) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.finish()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.debouncer.Add(w.path)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(fmt.Sprintf("watcher: %v", err))
		}
	}
}

func (w *Watcher) emit(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	for _, p := range paths {
		select {
		case w.changes <- p:
		default:
			// A reload is already queued.
		}
	}
}

func (w *Watcher) finish() {
	w.debouncer.Stop()

	w.mu.Lock()
	w.closed = true
	close(w.changes)
	w.mu.Unlock()
}
