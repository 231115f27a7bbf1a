// Package tty answers "is this terminal device still alive" with a
// bounded TTL cache in front of the stat call, so a cleanup pass over
// many sessions does not pay one syscall per session per tick.
package tty

import (
	"os"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a probe result stays fresh.
	DefaultTTL = 5 * time.Second
	// DefaultMaxEntries bounds the cache size.
	DefaultMaxEntries = 256
)

type entry struct {
	alive   bool
	checked time.Time
}

// Checker caches terminal liveness probes. A probe stats the device
// path and requires a character device; any stat failure, including a
// permission error, counts as dead so eviction fails closed.
//
// Eviction is FIFO by insertion order with a fixed bound. Refreshing an
// entry does not move it, so a long-lived hot tty can be evicted before
// a cold one; at this scale that is cheaper than maintaining an LRU.
type Checker struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry
	fifo       []string

	now   func() time.Time
	probe func(string) bool
}

// NewChecker creates a checker. Non-positive arguments select the
// package defaults.
func NewChecker(ttl time.Duration, maxEntries int) *Checker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Checker{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
		now:        time.Now,
		probe:      probeCharDevice,
	}
}

// Alive reports whether the terminal at path is still live. The empty
// path means the session runs unattached (background or unknown
// terminal) and is always considered alive.
func (c *Checker) Alive(path string) bool {
	if path == "" {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && c.now().Sub(e.checked) < c.ttl {
		return e.alive
	}
	alive := c.probe(path)
	c.remember(path, alive)
	return alive
}

// remember stores a probe result, evicting the oldest inserted path
// when the cache is full. Called with the mutex held.
func (c *Checker) remember(path string, alive bool) {
	if _, ok := c.entries[path]; !ok {
		if len(c.fifo) >= c.maxEntries {
			oldest := c.fifo[0]
			c.fifo = c.fifo[1:]
			delete(c.entries, oldest)
		}
		c.fifo = append(c.fifo, path)
	}
	c.entries[path] = entry{alive: alive, checked: c.now()}
}

// probeCharDevice reports whether path names an existing character
// device.
func probeCharDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
