package server

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/relenghq/shipit/config"
)

// ConfigWatcher reloads the server configuration when the config file
// changes on disk. Editors replace files rather than writing in place, so
// the watch is on the parent directory and events are debounced.
type ConfigWatcher struct {
	path     string
	server   *Server
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	dirty bool
}

// NewConfigWatcher creates a watcher for the given config file path.
func NewConfigWatcher(path string, srv *Server, logger *slog.Logger) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ConfigWatcher{
		path:     path,
		server:   srv,
		watcher:  fsw,
		logger:   logger.With("component", "config-watcher"),
		debounce: 500 * time.Millisecond,
	}, nil
}

// Start begins watching until the context is canceled.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started", "path", w.path)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *ConfigWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *ConfigWatcher) processEvents(ctx context.Context) {
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
				w.dirty = true
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			if !w.dirty {
				continue
			}
			w.dirty = false
			w.reload()
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := config.LoadFromFile(w.path)
	if err != nil {
		w.logger.Error("Config reload failed, keeping previous config",
			"path", w.path,
			"error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Error("Reloaded config invalid, keeping previous config",
			"path", w.path,
			"error", err)
		return
	}
	w.server.SetConfig(cfg)
}
