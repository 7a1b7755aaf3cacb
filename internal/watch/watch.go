// =============================================================================
// internal/watch/watch.go - Re-run a pass whenever a file changes
// =============================================================================
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long events are collected before a pass runs
const DefaultDebounce = 500 * time.Millisecond

// Pass is one full run over the watched file
type Pass func(ctx context.Context) error

// Watcher runs a pass once and then after every change to a file
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger
	onError  func(error)
}

// New creates a watcher for path
func New(path string, log zerolog.Logger) *Watcher {
	return &Watcher{path: path, debounce: DefaultDebounce, log: log, onError: func(error) {}}
}

// WithDebounce sets the event coalescing window
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// OnError sets a callback for failed passes. The loop keeps running.
func (w *Watcher) OnError(fn func(error)) *Watcher {
	w.onError = fn
	return w
}

// Run executes pass, then again after each write to the file, until ctx
// is cancelled. The parent directory is watched so editors that replace
// the file by renaming are seen too.
func (w *Watcher) Run(ctx context.Context, pass Pass) error {
	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	w.run(ctx, pass)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, target) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("File changed")
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.run(ctx, pass)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) run(ctx context.Context, pass Pass) {
	if ctx.Err() != nil {
		return
	}
	w.log.Info().Str("file", w.path).Msg("Running pass")
	if err := pass(ctx); err != nil {
		w.log.Error().Err(err).Msg("Pass failed")
		w.onError(err)
	}
}

func relevant(event fsnotify.Event, target string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	return err == nil && name == target
}
