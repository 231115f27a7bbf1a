// Package watch notifies long-running readers when the session store
// file changes on disk, so a monitor can re-render without polling.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/logging"
)

// DefaultDebounce collapses the event bursts a single store write
// produces into one callback.
const DefaultDebounce = 100 * time.Millisecond

// StoreWatcher delivers a callback when the store file is rewritten.
type StoreWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()

	mu         sync.Mutex
	lastChange time.Time

	log *logrus.Entry
}

// NewStoreWatcher watches the store file at path. The watch covers the
// parent directory because every store write replaces the file by
// rename, which would silently detach a watch on the file itself.
func NewStoreWatcher(path string, debounce time.Duration, onChange func()) (*StoreWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		watcher.Close()
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &StoreWatcher{
		watcher:  watcher,
		path:     path,
		debounce: debounce,
		onChange: onChange,
		log:      logging.NewLogger("watch"),
	}, nil
}

// Start blocks, delivering debounced change callbacks until the context
// is cancelled.
func (w *StoreWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// A rename lands as Create for the destination name.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

func (w *StoreWatcher) handleChange() {
	w.mu.Lock()
	elapsed := time.Since(w.lastChange)
	if elapsed < w.debounce {
		w.mu.Unlock()
		w.log.Debugf("Debounced store change (%v since last)", elapsed)
		return
	}
	w.lastChange = time.Now()
	w.mu.Unlock()

	w.log.Debug("Store file changed")
	if w.onChange != nil {
		w.onChange()
	}
}

// Close stops the watcher and releases resources.
func (w *StoreWatcher) Close() error {
	return w.watcher.Close()
}
