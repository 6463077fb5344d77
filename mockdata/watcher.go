package mockdata

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spherex/doc-portal/storage"
)

// defaultDebounce is how long to wait for further writes before
// reloading. Editors typically emit several events per save.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the dataset file whenever it changes on disk and
// re-seeds the repository. A broken edit is logged and skipped; the
// previously loaded documents stay in place.
type Watcher struct {
	path     string
	repo     *storage.Repository
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher for the dataset at path.
func NewWatcher(path string, repo *storage.Repository, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		path:     path,
		repo:     repo,
		logger:   logger,
		watcher:  fsw,
		debounce: defaultDebounce,
	}, nil
}

// Start begins watching the dataset file's directory. Watching the
// directory rather than the file keeps the watch alive across the
// rename-and-replace pattern editors use when saving.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents(ctx)
	w.logger.Info("watching dataset for changes", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.pendingMu.Lock()
				w.pending = true
				w.pendingMu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("dataset watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()
	if !pending {
		return
	}

	ds, err := Load(w.path)
	if err != nil {
		w.logger.Warn("dataset changed but could not be loaded, keeping previous documents",
			"path", w.path, "error", err)
		return
	}
	if err := ds.Bootstrap(ctx, w.repo); err != nil {
		w.logger.Warn("dataset changed but could not be stored",
			"path", w.path, "error", err)
		return
	}
	w.logger.Info("dataset reloaded", "path", w.path)
}
