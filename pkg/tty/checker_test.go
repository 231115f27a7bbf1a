package tty

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestProbeCharDevice(t *testing.T) {
	if _, err := os.Stat("/dev/null"); err == nil {
		if !probeCharDevice("/dev/null") {
			t.Error("probeCharDevice(/dev/null) = false, want true")
		}
	}

	regular := filepath.Join(t.TempDir(), "not-a-tty")
	if err := os.WriteFile(regular, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if probeCharDevice(regular) {
		t.Error("probeCharDevice(regular file) = true, want false")
	}

	if probeCharDevice(filepath.Join(t.TempDir(), "missing")) {
		t.Error("probeCharDevice(missing path) = true, want false")
	}
}

func TestAliveEmptyPath(t *testing.T) {
	c := NewChecker(time.Second, 4)
	c.probe = func(string) bool {
		t.Error("empty path must not be probed")
		return false
	}
	if !c.Alive("") {
		t.Error("Alive(\"\") = false, want true for unattached sessions")
	}
}

func TestAliveCachesWithinTTL(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	probes := 0

	c := NewChecker(time.Second, 4)
	c.now = func() time.Time { return clock }
	c.probe = func(string) bool {
		probes++
		return true
	}

	for i := 0; i < 5; i++ {
		if !c.Alive("/dev/ttys001") {
			t.Fatal("Alive() = false, want true")
		}
	}
	if probes != 1 {
		t.Errorf("probes within TTL = %d, want 1", probes)
	}

	// Past the TTL the next call re-probes.
	clock = clock.Add(2 * time.Second)
	c.Alive("/dev/ttys001")
	if probes != 2 {
		t.Errorf("probes after TTL = %d, want 2", probes)
	}
}

func TestAliveFailsClosed(t *testing.T) {
	c := NewChecker(time.Second, 4)
	c.probe = func(string) bool { return false }
	if c.Alive("/dev/ttys001") {
		t.Error("Alive() = true for a dead probe, want false")
	}
}

func TestEvictionIsFIFONotLRU(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	probed := make(map[string]int)

	c := NewChecker(time.Minute, 2)
	c.now = func() time.Time { return clock }
	c.probe = func(path string) bool {
		probed[path]++
		return true
	}

	c.Alive("/dev/a")
	c.Alive("/dev/b")
	// Touch a again; under LRU this would make b the eviction victim.
	c.Alive("/dev/a")

	// Inserting a third path evicts the oldest-inserted entry, which is
	// still a.
	c.Alive("/dev/c")
	c.Alive("/dev/a")

	if probed["/dev/a"] != 2 {
		t.Errorf("probes for a = %d, want 2 (evicted by insertion order)", probed["/dev/a"])
	}
	if probed["/dev/b"] != 1 {
		t.Errorf("probes for b = %d, want 1 (not evicted)", probed["/dev/b"])
	}
}

func TestEvictionBound(t *testing.T) {
	c := NewChecker(time.Minute, 2)
	c.probe = func(string) bool { return true }

	for _, p := range []string{"/dev/a", "/dev/b", "/dev/c", "/dev/d"} {
		c.Alive(p)
	}
	if len(c.entries) != 2 || len(c.fifo) != 2 {
		t.Errorf("cache size = %d entries, %d fifo slots, want 2 each", len(c.entries), len(c.fifo))
	}
}
