package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce collapses the burst of events editors emit for one save.
const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a preset file whenever it changes on disk.
type Watcher struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
	presets  chan Preset
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatchLogger sets the logger parse failures are reported to.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// NewWatcher starts watching the directory holding path. Watching the
// directory keeps working when editors replace the file by renaming.
//
// Parameters:
//   - path: the preset file
//   - options: functional options
//
// Returns:
//   - *Watcher: the watcher, call Run to start delivering presets
//   - error: if the platform watcher cannot be created
func NewWatcher(path string, options ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve preset path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create preset watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		logger:   slog.Default(),
		debounce: defaultDebounce,
		watcher:  fw,
		presets:  make(chan Preset, 1),
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

// Presets delivers each successfully parsed preset. Only the newest pending
// preset is kept when the consumer falls behind. The channel closes when Run returns.
func (w *Watcher) Presets() <-chan Preset {
	return w.presets
}

// Run processes file events until ctx is cancelled. Invalid files are logged
// and skipped, the last good preset stays in effect.
//
// Parameters:
//   - ctx: cancels the watch
//
// Returns:
//   - error: nil after cancellation, or the watcher's fatal error
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.presets)
	defer w.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("preset watcher closed")
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("preset watcher closed")
			}
			w.logger.Error("Preset watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	p, err := LoadPreset(w.path)
	if err != nil {
		w.logger.Warn("Preset reload skipped", slog.String("path", w.path), slog.String("error", err.Error()))
		return
	}
	w.logger.Info("Preset reloaded", slog.String("path", w.path))

	// replace a preset the consumer has not taken yet
	select {
	case <-w.presets:
	default:
	}
	w.presets <- p
}
