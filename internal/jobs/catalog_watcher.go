package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator forces the next catalog access to reload.
type Invalidator interface {
	Invalidate()
}

// CatalogWatcher invalidates the catalog cache when a local catalog file
// changes.
type CatalogWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	target  Invalidator
	logger  *zap.Logger
}

// NewCatalogWatcher watches the directory containing path.
func NewCatalogWatcher(path string, target Invalidator, logger *zap.Logger) (*CatalogWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &CatalogWatcher{watcher: w, path: abs, target: target, logger: logger}, nil
}

// Start blocks until ctx is cancelled or the watcher is closed.
func (w *CatalogWatcher) Start(ctx context.Context) {
	defer w.watcher.Close()
	w.logger.Info("catalog watcher started", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("catalog watcher stopped")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Info("catalog file changed", zap.String("op", event.Op.String()))
			w.target.Invalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *CatalogWatcher) Close() error {
	return w.watcher.Close()
}
