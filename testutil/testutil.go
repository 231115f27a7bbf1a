// Package testutil provides shared fixtures for ttydeck tests: a
// per-test TTYDECK_HOME, hook event builders, and a live daemon server
// over a temp socket.
package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ttydeck/ttydeck/internal/daemon/server"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/daemon"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// TempHome points TTYDECK_HOME at a fresh directory so the test's
// store, socket, and logs never touch the real user paths. Returns the
// directory.
func TempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TTYDECK_HOME", home)
	return home
}

// RandomID generates a hex string of the given length, handy for
// unique session keys.
func RandomID(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}

// Event builds a minimal valid hook event.
func Event(id string, name models.EventName) *models.HookEvent {
	return &models.HookEvent{SessionID: id, EventName: name, Cwd: "/tmp/work"}
}

// StartEvent reports a new session.
func StartEvent(id string) *models.HookEvent {
	return Event(id, models.EventSessionStart)
}

// PromptEvent reports a submitted user prompt.
func PromptEvent(id, prompt string) *models.HookEvent {
	ev := Event(id, models.EventUserPromptSubmit)
	ev.Prompt = prompt
	return ev
}

// ToolEvent reports a tool invocation starting.
func ToolEvent(id, tool string) *models.HookEvent {
	ev := Event(id, models.EventPreToolUse)
	ev.ToolName = tool
	return ev
}

// NotifyEvent reports an agent notification.
func NotifyEvent(id, notificationType string) *models.HookEvent {
	ev := Event(id, models.EventNotification)
	ev.NotificationType = notificationType
	return ev
}

// StopEvent reports the agent going idle.
func StopEvent(id string) *models.HookEvent {
	return Event(id, models.EventStop)
}

// EndEvent reports the session terminating.
func EndEvent(id string) *models.HookEvent {
	return Event(id, models.EventSessionEnd)
}

// StartServer runs a daemon server over the given mutator on
// socketPath and stops it when the test ends.
func StartServer(t *testing.T, mut daemon.Mutator, socketPath string) *server.Server {
	t.Helper()
	srv := server.New(mut, logging.NewLogger("daemon-test"))
	require.NoError(t, srv.Start(socketPath), "failed to start test daemon on %s", socketPath)
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

// WriteAgentsFile writes an agents.toml under the given TTYDECK_HOME.
func WriteAgentsFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, "config", "ttydeck")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents.toml"), []byte(content), 0o644))
}

// WriteConfigFile writes a ttydeck.yml into dir and returns its path.
func WriteConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "ttydeck.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
