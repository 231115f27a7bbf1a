package daemon

import (
	"net"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// New returns a Client that will use the daemon listening on socketPath
// if one is reachable, otherwise falls back to direct mutation through
// local.
//
// This implements the "transparent daemon" pattern: callers don't need
// to know whether the daemon is running or not. The same API works in
// both modes.
func New(socketPath string, local Mutator) Client {
	// Check if socket exists and we can connect
	if _, err := os.Stat(socketPath); err == nil {
		conn, err := net.DialTimeout("unix", socketPath, connectTimeout)
		if err == nil {
			conn.Close()
			return NewRemoteClient(socketPath)
		}
	}

	// Fallback: daemon not running, use local client
	return NewLocalClient(local)
}

// IsRunning reports whether a daemon currently accepts connections on
// socketPath.
func IsRunning(socketPath string) bool {
	conn, err := net.DialTimeout("unix", socketPath, connectTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// WithFallback wraps the daemon-first client so that a transport
// failure mid-request degrades to direct mutation instead of surfacing
// as an error. A daemon that rejects a request (bad event, unknown
// type) still fails the call; only coordinator unavailability triggers
// the fallback.
type WithFallback struct {
	Primary  Client
	Fallback Client

	log *logrus.Entry
}

// NewWithFallback creates a client that tries the daemon first, then
// falls back to local execution. When no daemon is reachable at
// construction time the primary already is the local client and no
// second fallback layer is added.
func NewWithFallback(socketPath string, local Mutator) *WithFallback {
	primary := New(socketPath, local)
	w := &WithFallback{
		Primary: primary,
		log:     logging.NewLogger("daemon-client"),
	}
	if _, remote := primary.(*RemoteClient); remote {
		w.Fallback = NewLocalClient(local)
	}
	return w
}

func (w *WithFallback) do(op func(Client) error) error {
	err := op(w.Primary)
	if err == nil || w.Fallback == nil {
		return err
	}
	code := errors.GetCode(err)
	if code != errors.ErrCodeDaemonUnreachable && code != errors.ErrCodeDaemonRequest {
		return err
	}
	w.log.WithError(err).Debug("Daemon request failed, falling back to direct store access")
	return op(w.Fallback)
}

// ApplyEvent submits one session event.
func (w *WithFallback) ApplyEvent(ev *models.HookEvent) error {
	return w.do(func(c Client) error { return c.ApplyEvent(ev) })
}

// ClearSessions removes every tracked session.
func (w *WithFallback) ClearSessions() error {
	return w.do(func(c Client) error { return c.ClearSessions() })
}

// ClearProjects removes every project grouping.
func (w *WithFallback) ClearProjects() error {
	return w.do(func(c Client) error { return c.ClearProjects() })
}

// ClearAll resets the store.
func (w *WithFallback) ClearAll() error {
	return w.do(func(c Client) error { return c.ClearAll() })
}

// IsRunning reports whether the primary client has a live daemon.
func (w *WithFallback) IsRunning() bool {
	return w.Primary.IsRunning()
}

// Close closes both layers; the fallback close flushes any direct
// writes it performed.
func (w *WithFallback) Close() error {
	err := w.Primary.Close()
	if w.Fallback != nil {
		if ferr := w.Fallback.Close(); err == nil {
			err = ferr
		}
	}
	return err
}

// Ensure WithFallback implements Client interface.
var _ Client = (*WithFallback)(nil)
