package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/pkg/models"
)

const (
	// connectTimeout bounds the initial dial; past it the daemon is
	// treated as unreachable.
	connectTimeout = 100 * time.Millisecond
	// requestTimeout bounds one full request/response exchange.
	requestTimeout = 2 * time.Second
)

// RemoteClient implements Client by sending one newline-terminated JSON
// request per connection to the daemon's unix socket and reading one
// newline-terminated response.
type RemoteClient struct {
	socketPath string
}

// NewRemoteClient creates a client for the daemon socket at socketPath.
// No connection is held between calls.
func NewRemoteClient(socketPath string) *RemoteClient {
	return &RemoteClient{socketPath: socketPath}
}

// ApplyEvent submits one session event for serialized application.
func (c *RemoteClient) ApplyEvent(ev *models.HookEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonRequest, "marshal event payload")
	}
	return c.roundTrip(Request{Type: TypeHookEvent, Payload: payload})
}

// ClearSessions removes every tracked session.
func (c *RemoteClient) ClearSessions() error {
	return c.roundTrip(Request{Type: TypeClearSessions})
}

// ClearProjects removes every project grouping.
func (c *RemoteClient) ClearProjects() error {
	return c.roundTrip(Request{Type: TypeClearProjects})
}

// ClearAll resets the store.
func (c *RemoteClient) ClearAll() error {
	return c.roundTrip(Request{Type: TypeClearAll})
}

// roundTrip performs one request/response exchange on a fresh
// connection. Transport failures carry coordinator error codes so
// callers can distinguish "daemon gone" from "daemon said no".
func (c *RemoteClient) roundTrip(req Request) error {
	conn, err := net.DialTimeout("unix", c.socketPath, connectTimeout)
	if err != nil {
		return errors.DaemonUnreachable(c.socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	data, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonRequest, "marshal request")
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonRequest, "write request")
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonRequest, "read response")
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return errors.Wrap(err, errors.ErrCodeDaemonRequest, "parse response")
	}
	if !resp.OK {
		// The daemon processed the request and rejected it. Not a
		// transport failure, so no fallback is warranted.
		return fmt.Errorf("daemon rejected request: %s", resp.Error)
	}
	return nil
}

// IsRunning reports whether the daemon currently accepts connections.
func (c *RemoteClient) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, connectTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Close is a no-op; connections are per-request.
func (c *RemoteClient) Close() error {
	return nil
}

// Ensure RemoteClient implements Client interface.
var _ Client = (*RemoteClient)(nil)
