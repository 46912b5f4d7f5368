// Package watcher signals when prototype files under a directory change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/udisondev/skillsys/internal/data"
)

// Watcher monitors a prototype directory tree and emits one signal per
// burst of relevant file events.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	debounce  time.Duration
	onChange  chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Dir string
	// Debounce coalesces events that arrive within this window. Zero emits
	// a signal per relevant event.
	Debounce time.Duration
}

// New creates a watcher and registers dir and all of its subdirectories.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		debounce:  cfg.Debounce,
		onChange:  make(chan struct{}, 1),
	}
	if err := w.addTree(cfg.Dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

// Changes returns the signal channel. It has capacity 1: signals raised
// while one is pending are merged into it.
func (w *Watcher) Changes() <-chan struct{} {
	return w.onChange
}

// Run processes file system events until ctx is cancelled, then releases
// the fsnotify watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.trackNewDir(event)
			if !isRelevantEvent(event) {
				continue
			}
			slog.Debug("prototype file changed", "path", event.Name, "op", event.Op.String())

			if w.debounce <= 0 {
				w.signal()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.signal()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("prototype watcher error", "dir", w.dir, "error", err)
		}
	}
}

// trackNewDir starts watching directories created after New.
func (w *Watcher) trackNewDir(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if err := w.addTree(event.Name); err != nil {
		slog.Debug("not watching created path", "path", event.Name, "error", err)
	}
}

// signal делает неблокирующую отправку: если сигнал уже ждёт, новый не нужен.
func (w *Watcher) signal() {
	select {
	case w.onChange <- struct{}{}:
	default:
	}
}

// isRelevantEvent reports whether event touches a prototype file.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return data.IsPrototypeFile(event.Name)
}
