package protocol

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for more changes before
// reindexing. Editors write protocol files in bursts (temp file, rename,
// chmod); one reload per burst is enough.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a directory-backed store when its protocol files
// change, so a corrected SOP takes effect without a restart.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher over the store's directory. The store
// must have been built with WithDir.
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:    store,
		watcher:  fsw,
		debounce: defaultDebounce,
		logger:   logger,
	}, nil
}

// Start begins watching and reloading until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.store.dir); err != nil {
		return err
	}

	go w.run(ctx)

	w.logger.Info("Protocol watcher started", "dir", w.store.dir, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// New subdirectories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				_ = w.addWatchesRecursive(w.store.dir)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Protocol watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.store.Reload(); err != nil {
				w.logger.Warn("Protocol reload failed", "error", err)
			} else {
				w.logger.Info("Protocols reloaded", "dir", w.store.dir)
			}
		}
	}
}
