package ontology

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits for further changes
// before triggering a reload.
const defaultDebounce = 500 * time.Millisecond

// Watcher watches an ontology directory and reloads the service when
// concept source files change. Changes are debounced so that an editor
// save burst triggers a single reload.
type Watcher struct {
	service  *Service
	dir      string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	reload   func() error

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher over the service's ontology directory.
func NewWatcher(service *Service, dir string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		service:  service,
		dir:      dir,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		reload:   service.Reload,
	}, nil
}

// Start begins watching. Blocks until ctx is cancelled or the underlying
// watcher closes.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.dir); err != nil {
		w.watcher.Close()
		return err
	}

	w.logger.Info("Watching ontology directory", "dir", w.dir)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// New subdirectories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}
			w.pendingMu.Lock()
			w.pending = true
			w.pendingMu.Unlock()
			// Stop and drain before Reset: a tick that already fired but
			// was not yet read would otherwise end the debounce window
			// early for this event.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Ontology watch error", "error", err)

		case <-timer.C:
			w.pendingMu.Lock()
			fire := w.pending
			w.pending = false
			w.pendingMu.Unlock()
			if !fire {
				continue
			}
			if err := w.reload(); err != nil {
				w.logger.Error("Ontology reload failed", "error", err)
			}
		}
	}
}

// relevant reports whether an event concerns a concept source file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext == ".yaml" || ext == ".yml" {
		return true
	}
	// Directory events carry no extension; keep them for addRecursive.
	return ext == ""
}

// addRecursive watches dir and all subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}
