package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/proprio/docintake/pkg/lifecycle"
)

// Watcher reloads the catalog from a portable JSON file whenever it changes.
// Intended for environments where rule configuration is deployed as a file
// alongside the service rather than edited through the API.
type Watcher struct {
	path   string
	sys    System
	logger *slog.Logger
}

// NewWatcher creates a Watcher for the given portable catalog file.
func NewWatcher(path string, sys System, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:   path,
		sys:    sys,
		logger: logger.With("system", "catalog-watcher"),
	}
}

// Start imports the file once, then watches its directory for changes.
// The watch loop exits when the lifecycle context is cancelled.
func (w *Watcher) Start(lc *lifecycle.Coordinator) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors and config deployments
	// typically replace the file, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return err
	}

	lc.OnStartup(func() {
		if err := w.importFile(lc.Context()); err != nil {
			w.logger.Error("initial catalog import failed", "path", w.path, "error", err)
		}
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		watcher.Close()
	})

	go w.watch(lc.Context(), watcher)
	return nil
}

func (w *Watcher) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			w.logger.Info("catalog file changed", "path", w.path)
			if err := w.importFile(ctx); err != nil {
				w.logger.Error("catalog file import failed", "path", w.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("catalog watch error", "error", err)
		}
	}
}

func (w *Watcher) importFile(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return err
	}

	var p Portable
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	return w.sys.Import(ctx, &p)
}
