// Package server implements the coordinator daemon: a unix socket
// accept loop that serializes store mutations from many short-lived
// callers through one process.
package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/pkg/daemon"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// requestTimeout bounds one request/response exchange on a connection.
const requestTimeout = 5 * time.Second

// Server owns the daemon's listening socket. Requests are handled
// request-at-a-time across all connections, so every mutation applies
// in the order the daemon finishes reading it.
type Server struct {
	logger  *logrus.Entry
	mutator daemon.Mutator

	mu         sync.Mutex
	listener   net.Listener
	socketPath string

	handlerMu sync.Mutex
	wg        sync.WaitGroup
}

// New creates a Server that applies requests through mutator.
func New(mutator daemon.Mutator, logger *logrus.Entry) *Server {
	return &Server{
		logger:  logger,
		mutator: mutator,
	}
}

// Start binds the socket and begins accepting connections in the
// background. Starting when a daemon is already listening on the path,
// whether this one or another process, is a no-op. A stale socket file
// left by a dead daemon is removed before binding.
func (s *Server) Start(socketPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return nil
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return errors.SocketBind(socketPath, err)
	}

	if _, err := os.Stat(socketPath); err == nil {
		if conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond); err == nil {
			conn.Close()
			s.logger.WithField("socket", socketPath).Info("Daemon already listening")
			return nil
		}
		// Cleanup stale socket
		if err := os.Remove(socketPath); err != nil {
			return errors.SocketBind(socketPath, err)
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return errors.SocketBind(socketPath, err)
	}

	// Set restrictive permissions on socket
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		os.Remove(socketPath)
		return errors.SocketBind(socketPath, err)
	}

	s.listener = listener
	s.socketPath = socketPath
	s.wg.Add(1)
	go s.acceptLoop(listener)

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	return nil
}

// Stop closes the listener, waits for in-flight requests, and removes
// the socket file. Stopping a server that never started is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	listener := s.listener
	socketPath := s.socketPath
	s.listener = nil
	s.mu.Unlock()

	if listener == nil {
		return nil
	}

	err := listener.Close()
	s.wg.Wait()
	if rmErr := os.Remove(socketPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	s.logger.Info("Daemon stopped")
	return err
}

// Running reports whether the server currently holds a listener.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			// Listener closed during Stop.
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn handles one request/response exchange and closes the
// connection. An unreadable request drops the connection; a readable
// but invalid one gets an error response.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		s.logger.WithError(err).Debug("Dropping connection with unreadable request")
		return
	}

	var resp daemon.Response
	var req daemon.Request
	if err := json.Unmarshal(line, &req); err != nil {
		resp = daemon.Response{OK: false, Error: fmt.Sprintf("malformed request: %v", err)}
	} else {
		resp = s.handle(req)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.WithError(err).Error("Failed to marshal response")
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.WithError(err).Debug("Failed to write response")
	}
}

// handle applies one request under the handler lock, giving strict FIFO
// ordering across all client connections.
func (s *Server) handle(req daemon.Request) daemon.Response {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()

	var err error
	switch req.Type {
	case daemon.TypeHookEvent:
		if len(req.Payload) == 0 || string(req.Payload) == "null" {
			err = fmt.Errorf("hookEvent request has no payload")
			break
		}
		var ev models.HookEvent
		if uerr := json.Unmarshal(req.Payload, &ev); uerr != nil {
			err = fmt.Errorf("malformed hookEvent payload: %v", uerr)
			break
		}
		err = s.mutator.ApplyEvent(&ev)
	case daemon.TypeClearSessions:
		err = s.mutator.ClearSessions()
	case daemon.TypeClearProjects:
		err = s.mutator.ClearProjects()
	case daemon.TypeClearAll:
		err = s.mutator.ClearAll()
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
	}

	if err != nil {
		s.logger.WithError(err).WithField("type", req.Type).Debug("Request failed")
		return daemon.Response{OK: false, Error: err.Error()}
	}
	return daemon.Response{OK: true}
}
