package cmd

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/testutil"
)

func TestRunHookAppliesEvent(t *testing.T) {
	testutil.TempHome(t)

	event := `{"session_id":"hook-test-1","hook_event_name":"SessionStart","cwd":"/tmp/w","agent":"claude"}`
	if err := runHook(NewHookCmd(), strings.NewReader(event)); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}

	tr := newTracker(&config.Config{})
	sessions := tr.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("len(sessions) = %d, want 1", len(sessions))
	}
	if sessions[0].SessionID != "hook-test-1" {
		t.Errorf("SessionID = %q, want hook-test-1", sessions[0].SessionID)
	}
	if sessions[0].Cwd != "/tmp/w" {
		t.Errorf("Cwd = %q, want /tmp/w", sessions[0].Cwd)
	}
}

func TestRunHookDeliversToDaemon(t *testing.T) {
	testutil.TempHome(t)
	cfg := &config.Config{}

	tr := newTracker(cfg)
	testutil.StartServer(t, tr, cfg.SocketPath())

	id := testutil.RandomID(16)
	event := fmt.Sprintf(`{"session_id":%q,"hook_event_name":"SessionStart","cwd":"/tmp/w"}`, id)
	if err := runHook(NewHookCmd(), strings.NewReader(event)); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}

	// The daemon's in-memory tracker saw the event; no flush needed.
	sessions := tr.Sessions()
	if len(sessions) != 1 || sessions[0].SessionID != id {
		t.Errorf("daemon tracker sessions = %+v, want %s", sessions, id)
	}
}

func TestRunHookRejectsMalformedJSON(t *testing.T) {
	testutil.TempHome(t)

	err := runHook(NewHookCmd(), strings.NewReader("{nope"))
	if errors.GetCode(err) != errors.ErrCodeEventInvalid {
		t.Errorf("error = %v, want EVENT_INVALID", err)
	}
}

func TestRunHookRejectsInvalidEvent(t *testing.T) {
	testutil.TempHome(t)

	err := runHook(NewHookCmd(), strings.NewReader(`{"hook_event_name":"SessionStart"}`))
	if errors.GetCode(err) != errors.ErrCodeEventInvalid {
		t.Errorf("error = %v, want EVENT_INVALID", err)
	}

	if got := len(newTracker(&config.Config{}).Sessions()); got != 0 {
		t.Errorf("len(sessions) = %d, want 0", got)
	}
}

func TestRunHookRespectsAgentToggle(t *testing.T) {
	home := testutil.TempHome(t)
	testutil.WriteAgentsFile(t, home, "[codex]\nenabled = false\n")

	event := `{"session_id":"codex-1","hook_event_name":"SessionStart","cwd":"/tmp/w","agent":"codex"}`
	if err := runHook(NewHookCmd(), strings.NewReader(event)); err != nil {
		t.Fatalf("runHook() error = %v", err)
	}

	if got := len(newTracker(&config.Config{}).Sessions()); got != 0 {
		t.Errorf("len(sessions) = %d, want 0 for disabled agent", got)
	}
}
