package daemon

import (
	"github.com/ttydeck/ttydeck/pkg/models"
)

// LocalClient implements Client by applying mutations directly through
// the caller's own store cache. This is used when the daemon is not
// running, providing the same API but executing in-process.
//
// Concurrent fallback writers from separate processes can race with
// each other; running without a daemon trades that consistency for
// availability.
type LocalClient struct {
	local Mutator
}

// NewLocalClient creates a client over the direct mutation surface.
func NewLocalClient(local Mutator) *LocalClient {
	return &LocalClient{local: local}
}

// ApplyEvent folds one session event into the store in-process.
func (c *LocalClient) ApplyEvent(ev *models.HookEvent) error {
	return c.local.ApplyEvent(ev)
}

// ClearSessions removes every tracked session.
func (c *LocalClient) ClearSessions() error {
	return c.local.ClearSessions()
}

// ClearProjects removes every project grouping.
func (c *LocalClient) ClearProjects() error {
	return c.local.ClearProjects()
}

// ClearAll resets the store.
func (c *LocalClient) ClearAll() error {
	return c.local.ClearAll()
}

// IsRunning always reports false; there is no daemon behind this
// client.
func (c *LocalClient) IsRunning() bool {
	return false
}

// Close flushes the pending store write. A short-lived fallback caller
// that skips this loses its mutation to the debounce window.
func (c *LocalClient) Close() error {
	return c.local.Flush()
}

// Ensure LocalClient implements Client interface.
var _ Client = (*LocalClient)(nil)
