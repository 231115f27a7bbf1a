// Package profiling provides opt-in span timing and pprof integration
// for the ttydeck CLI. Spans cost nothing unless enabled.
package profiling

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

// span is one timed operation. All fields are guarded by the owning
// profiler's mutex.
type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	owner    *profiler
}

// Stop records the span's duration and pops it off the stack.
func (s *span) Stop() {
	s.owner.end(s)
}

type profiler struct {
	mu      sync.Mutex
	enabled bool
	root    *span
	stack   []*span
}

var global = &profiler{}

// Enable turns span collection on. Spans started before Enable are
// lost.
func Enable() {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.enabled {
		return
	}
	global.enabled = true
	global.root = &span{name: "root", start: time.Now(), owner: global}
	global.stack = []*span{global.root}
}

// Start opens a named span nested under the currently open one. Always
// pair with Stop, typically via defer:
//
//	defer profiling.Start("storage.load").Stop()
func Start(name string) Stopper {
	global.mu.Lock()
	defer global.mu.Unlock()
	if !global.enabled {
		return noop{}
	}
	parent := global.stack[len(global.stack)-1]
	s := &span{name: name, start: time.Now(), owner: global}
	parent.children = append(parent.children, s)
	global.stack = append(global.stack, s)
	return s
}

func (p *profiler) end(s *span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.duration = time.Since(s.start)
	if len(p.stack) > 1 && p.stack[len(p.stack)-1] == s {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// Summarize writes the indented span tree with durations and percent of
// total runtime. A no-op when profiling was never enabled.
func Summarize(w io.Writer) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if !global.enabled || global.root == nil {
		return
	}
	if global.root.duration == 0 {
		global.root.duration = time.Since(global.root.start)
	}

	fmt.Fprintln(w, "\n--- Timing ---")
	writeSpan(w, global.root, 0, global.root.duration)
	fmt.Fprintln(w, "--------------")
}

func writeSpan(w io.Writer, s *span, depth int, total time.Duration) {
	if s.name != "root" {
		pct := 0.0
		if total > 0 {
			pct = float64(s.duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n",
			strings.Repeat("  ", depth-1), s.name, s.duration.Round(100*time.Microsecond), pct)
	}
	sort.Slice(s.children, func(i, j int) bool {
		return s.children[i].start.Before(s.children[j].start)
	})
	for _, child := range s.children {
		writeSpan(w, child, depth+1, total)
	}
}

type noop struct{}

func (noop) Stop() {}
