package cleanup

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/logging"
)

// DefaultInterval is how often the engine runs when at least one owner
// holds it.
const DefaultInterval = 30 * time.Second

// Engine drives the periodic cleanup loop. The actual pass is injected
// so its store access serializes with every other mutation in the
// owning process.
//
// Several owners may hold the loop at once (the monitor view and the
// daemon, for instance); they share one ticker via a reference count.
// The ticker starts on the first Acquire and stops when the count
// returns to zero.
type Engine struct {
	interval time.Duration
	run      func()

	mu      sync.Mutex
	refs    int
	stop    chan struct{}
	running bool

	log *logrus.Entry
}

// NewEngine creates an engine that invokes run on each tick. A
// non-positive interval selects DefaultInterval.
func NewEngine(interval time.Duration, run func()) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		interval: interval,
		run:      run,
		log:      logging.NewLogger("cleanup"),
	}
}

// Acquire registers an owner, starting the shared ticker on the first
// acquisition.
func (e *Engine) Acquire() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.refs++
	if e.refs == 1 {
		e.stop = make(chan struct{})
		go e.loop(e.stop)
		e.log.WithField("interval", e.interval).Debug("Cleanup loop started")
	}
}

// Release drops one owner. The ticker stops when the last owner is
// gone; a Release without a matching Acquire is ignored.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.refs == 0 {
		return
	}
	e.refs--
	if e.refs == 0 {
		close(e.stop)
		e.stop = nil
		e.log.Debug("Cleanup loop stopped")
	}
}

func (e *Engine) loop(stop chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick runs one pass unless the previous one is still in progress, in
// which case the fired tick is skipped rather than queued.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.log.Debug("Cleanup pass still in progress, skipping tick")
		return
	}
	e.running = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()
	e.run()
}
