package daemon

import (
	"bufio"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ttydeck/ttydeck/pkg/models"
)

type recordingMutator struct {
	mu      sync.Mutex
	applied []string
	flushed int
}

func (r *recordingMutator) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, call)
}

func (r *recordingMutator) ApplyEvent(ev *models.HookEvent) error {
	r.record("applyEvent:" + ev.SessionID)
	return nil
}
func (r *recordingMutator) ClearSessions() error { r.record("clearSessions"); return nil }
func (r *recordingMutator) ClearProjects() error { r.record("clearProjects"); return nil }
func (r *recordingMutator) ClearAll() error      { r.record("clearAll"); return nil }

func (r *recordingMutator) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushed++
	return nil
}

func (r *recordingMutator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.applied...)
}

func TestNewSelectsLocalWithoutSocket(t *testing.T) {
	t.Setenv("TTYDECK_HOME", t.TempDir())
	socketPath := filepath.Join(t.TempDir(), "nope.sock")

	client := New(socketPath, &recordingMutator{})
	if _, ok := client.(*LocalClient); !ok {
		t.Errorf("client = %T, want *LocalClient", client)
	}
	if client.IsRunning() {
		t.Error("IsRunning() = true without a daemon")
	}
}

func TestNewSelectsRemoteWithListener(t *testing.T) {
	t.Setenv("TTYDECK_HOME", t.TempDir())
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	client := New(socketPath, &recordingMutator{})
	if _, ok := client.(*RemoteClient); !ok {
		t.Errorf("client = %T, want *RemoteClient", client)
	}
	if !client.IsRunning() {
		t.Error("IsRunning() = false with a live listener")
	}
	if !IsRunning(socketPath) {
		t.Error("IsRunning(path) = false with a live listener")
	}
}

func TestIsRunningWithoutListener(t *testing.T) {
	if IsRunning(filepath.Join(t.TempDir(), "nope.sock")) {
		t.Error("IsRunning() = true for a missing socket")
	}
}

func TestLocalClientCloseFlushes(t *testing.T) {
	mut := &recordingMutator{}
	client := NewLocalClient(mut)

	if err := client.ApplyEvent(&models.HookEvent{SessionID: "s1", EventName: models.EventStop}); err != nil {
		t.Fatalf("ApplyEvent() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if mut.flushed != 1 {
		t.Errorf("flushes = %d, want 1", mut.flushed)
	}
}

func TestWithFallbackOnTransportFailure(t *testing.T) {
	t.Setenv("TTYDECK_HOME", t.TempDir())
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// Accept and hang up without ever responding.
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 1024)
			conn.Read(buf)
			conn.Close()
		}
	}()

	mut := &recordingMutator{}
	w := NewWithFallback(socketPath, mut)
	if _, ok := w.Primary.(*RemoteClient); !ok {
		t.Fatalf("primary = %T, want *RemoteClient", w.Primary)
	}

	if err := w.ClearSessions(); err != nil {
		t.Fatalf("ClearSessions() error = %v, want fallback success", err)
	}
	if got := mut.calls(); len(got) != 1 || got[0] != "clearSessions" {
		t.Errorf("fallback calls = %v, want [clearSessions]", got)
	}
}

func TestWithFallbackHonorsDaemonRejection(t *testing.T) {
	t.Setenv("TTYDECK_HOME", t.TempDir())
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	// A live daemon that rejects everything.
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			bufio.NewReader(conn).ReadBytes('\n')
			conn.Write([]byte(`{"ok":false,"error":"event rejected"}` + "\n"))
			conn.Close()
		}
	}()

	mut := &recordingMutator{}
	w := NewWithFallback(socketPath, mut)

	err = w.ClearAll()
	if err == nil {
		t.Fatal("ClearAll() error = nil, want the daemon's rejection")
	}
	if !strings.Contains(err.Error(), "event rejected") {
		t.Errorf("error = %v, want the daemon's message", err)
	}
	// A rejection is not unavailability; no direct mutation happened.
	if got := mut.calls(); len(got) != 0 {
		t.Errorf("local mutations = %v, want none", got)
	}
}

func TestWithFallbackLocalPrimary(t *testing.T) {
	t.Setenv("TTYDECK_HOME", t.TempDir())
	mut := &recordingMutator{}
	w := NewWithFallback(filepath.Join(t.TempDir(), "nope.sock"), mut)

	if _, ok := w.Primary.(*LocalClient); !ok {
		t.Fatalf("primary = %T, want *LocalClient", w.Primary)
	}
	if w.Fallback != nil {
		t.Error("local primary got a redundant fallback layer")
	}
	if err := w.ClearSessions(); err != nil {
		t.Fatalf("ClearSessions() error = %v", err)
	}
	if got := mut.calls(); len(got) != 1 {
		t.Errorf("calls = %v, want one direct mutation", got)
	}
}
