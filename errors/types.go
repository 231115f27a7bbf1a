package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Store errors
	ErrCodeStoreCorrupt     ErrorCode = "STORE_CORRUPT"
	ErrCodeStoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"

	// Event errors
	ErrCodeEventInvalid ErrorCode = "EVENT_INVALID"

	// Coordinator errors
	ErrCodeDaemonUnreachable ErrorCode = "DAEMON_UNREACHABLE"
	ErrCodeDaemonRequest     ErrorCode = "DAEMON_REQUEST_FAILED"
	ErrCodeSocketBind        ErrorCode = "SOCKET_BIND_FAILED"

	// Liveness errors
	ErrCodeLivenessCheck ErrorCode = "LIVENESS_CHECK_FAILED"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// TrackerError represents a structured error with context
type TrackerError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *TrackerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *TrackerError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *TrackerError) WithDetail(key string, value interface{}) *TrackerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *TrackerError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new TrackerError
func New(code ErrorCode, message string) *TrackerError {
	return &TrackerError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new TrackerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TrackerError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a TrackerError
func Wrap(err error, code ErrorCode, message string) *TrackerError {
	return &TrackerError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TrackerError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is checks if an error is a specific TrackerError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	trackerErr, ok := err.(*TrackerError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return trackerErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	trackerErr, ok := err.(*TrackerError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return trackerErr.Code
}
