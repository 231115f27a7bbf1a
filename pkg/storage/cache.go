// Package storage persists the session store to a JSON file behind a
// small write-behind cache. The cache holds at most one in-memory
// snapshot and a pending-write timer: bursts of mutations coalesce into
// a single disk write, and short-lived callers flush before exit so the
// last write is never silently dropped.
//
// Nothing else in the codebase touches the store file.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/profiling"
	"github.com/ttydeck/ttydeck/pkg/store"
)

// DefaultDebounce is how long a scheduled write waits for further
// mutations to coalesce before hitting disk.
const DefaultDebounce = 250 * time.Millisecond

// Cache is a write-behind cache over one store file. Construct one per
// process and pass it to everything that needs store access; the zero
// value is not usable.
type Cache struct {
	mu       sync.Mutex
	path     string
	debounce time.Duration

	snapshot *store.Store
	timer    *time.Timer
	pending  bool

	log *logrus.Entry
}

// NewCache creates a cache over the store file at path. A non-positive
// debounce selects DefaultDebounce.
func NewCache(path string, debounce time.Duration) *Cache {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Cache{
		path:     path,
		debounce: debounce,
		log:      logging.NewLogger("storage"),
	}
}

// Path returns the store file location.
func (c *Cache) Path() string {
	return c.path
}

// Read returns the cached snapshot, loading it from disk on first use.
// A missing file is the normal first-run case and yields an empty,
// well-formed store; an unreadable or unparsable file is logged and
// also yields an empty store, never an error.
func (c *Cache) Read() *store.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		c.snapshot = c.load()
	}
	return c.snapshot
}

// ScheduleWrite replaces the cached snapshot and (re)starts the
// debounce timer. Multiple calls before the timer fires coalesce into a
// single eventual write of only the last snapshot.
func (c *Cache) ScheduleWrite(st *store.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = st
	c.pending = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.writeExpired)
}

// Flush writes the pending snapshot synchronously, if there is one, and
// clears the timer. Short-lived callers must flush before exit or their
// write is lost to the debounce window.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !c.pending {
		return nil
	}
	if err := c.write(); err != nil {
		return err
	}
	c.pending = false
	return nil
}

// Reset drops the cached snapshot and any pending write without
// touching disk, forcing the next Read to load fresh. Used after an
// external process mutated the store file.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.snapshot = nil
	c.pending = false
}

// writeExpired runs on the timer goroutine when the debounce window
// closes. A write failure keeps the snapshot and the pending flag so a
// later flush retries; callers are never blocked by a transient disk
// error.
func (c *Cache) writeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return
	}
	if err := c.write(); err != nil {
		c.log.WithError(err).Warn("Deferred store write failed, will retry on flush")
		return
	}
	c.pending = false
}

// load reads and parses the store file. Called with the mutex held.
func (c *Cache) load() *store.Store {
	defer profiling.Start("storage.load").Stop()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.WithError(err).WithField("path", c.path).Warn("Failed to read store file, starting empty")
		}
		return store.New()
	}

	st := &store.Store{}
	if err := json.Unmarshal(data, st); err != nil {
		c.log.WithError(errors.StoreCorrupt(c.path, err)).Warn("Store file is corrupt, starting empty")
		return store.New()
	}
	st.Normalize()
	return st
}

// write persists the current snapshot. Called with the mutex held.
// The snapshot goes to a temp file in the same directory and is renamed
// into place, so a concurrent reader never observes a partial store.
func (c *Cache) write() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "create store directory %s", dir)
	}

	data, err := json.MarshalIndent(c.snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreWriteFailed, "marshal store")
	}

	tmp, err := os.CreateTemp(dir, ".sessions-*.json")
	if err != nil {
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "create temp file in %s", dir)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "write store file %s", c.path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "write store file %s", c.path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "chmod store file %s", c.path)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, errors.ErrCodeStoreWriteFailed, "replace store file %s", c.path)
	}
	return nil
}
