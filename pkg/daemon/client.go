// Package daemon provides the coordinator client for submitting store
// mutations. It implements a transparent fallback pattern: if the
// coordinator daemon is listening, mutations go through its socket and
// are strictly serialized; if not, they fall back to direct store
// access in the calling process.
package daemon

import (
	"encoding/json"

	"github.com/ttydeck/ttydeck/pkg/models"
)

// Request types understood by the coordinator daemon.
const (
	TypeHookEvent     = "hookEvent"
	TypeClearSessions = "clearSessions"
	TypeClearProjects = "clearProjects"
	TypeClearAll      = "clearAll"
)

// Request is one newline-terminated JSON message sent to the daemon.
// Payload is only set for hookEvent.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the daemon's newline-terminated reply. The daemon never
// pushes anything unsolicited on this channel.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Mutator is the direct mutation surface used when no daemon is
// reachable. The tracker satisfies it; the daemon's request handler
// applies requests through the same interface, so both paths share one
// implementation.
type Mutator interface {
	ApplyEvent(ev *models.HookEvent) error
	ClearSessions() error
	ClearProjects() error
	ClearAll() error

	// Flush writes any pending store state synchronously. Short-lived
	// fallback callers must flush before exit.
	Flush() error
}

// Client defines the mutation interface for event sources. Both
// RemoteClient (socket) and LocalClient (direct calls) implement it.
type Client interface {
	ApplyEvent(ev *models.HookEvent) error
	ClearSessions() error
	ClearProjects() error
	ClearAll() error

	// IsRunning reports whether a live daemon is serving this client.
	IsRunning() bool

	// Close releases client resources. For the local client this
	// flushes the pending store write.
	Close() error
}
