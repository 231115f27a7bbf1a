package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *TrackerError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *TrackerError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// StoreCorrupt creates a store parse failure error
func StoreCorrupt(path string, err error) *TrackerError {
	return Wrap(err, ErrCodeStoreCorrupt, fmt.Sprintf("store file is not valid JSON: %s", path)).
		WithDetail("path", path)
}

// EventInvalid wraps an event validation failure; the cause names the
// offending field.
func EventInvalid(err error) *TrackerError {
	return Wrap(err, ErrCodeEventInvalid, "event rejected")
}

// SessionNotFound creates a session lookup error
func SessionNotFound(key string) *TrackerError {
	return New(ErrCodeSessionNotFound, fmt.Sprintf("session '%s' not found", key)).
		WithDetail("session_id", key)
}

// ProjectNotFound creates a project lookup error
func ProjectNotFound(id string) *TrackerError {
	return New(ErrCodeProjectNotFound, fmt.Sprintf("project '%s' not found", id)).
		WithDetail("project_id", id)
}

// DaemonUnreachable creates a coordinator connectivity error. Callers treat
// this as the trigger for direct store fallback, not as a hard failure.
func DaemonUnreachable(socketPath string, err error) *TrackerError {
	return Wrap(err, ErrCodeDaemonUnreachable, fmt.Sprintf("coordinator daemon not reachable at %s", socketPath)).
		WithDetail("socket", socketPath)
}

// SocketBind creates a socket bind failure error
func SocketBind(socketPath string, err error) *TrackerError {
	return Wrap(err, ErrCodeSocketBind, fmt.Sprintf("failed to bind socket %s", socketPath)).
		WithDetail("socket", socketPath)
}
