package cli

import (
	"fmt"
	"os"

	"github.com/ttydeck/ttydeck/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	// Check for specific error codes
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		if trackerErr, ok := err.(*errors.TrackerError); ok {
			fmt.Fprintf(os.Stderr, "❌ Configuration file not found: %v\n", trackerErr.Details["path"])
		} else {
			fmt.Fprintf(os.Stderr, "❌ Configuration file not found\n")
		}
		fmt.Fprintf(os.Stderr, "ttydeck runs with built-in defaults when no config exists; pass --config to use a specific file.\n")
		return err

	case errors.ErrCodeSessionNotFound:
		if trackerErr, ok := err.(*errors.TrackerError); ok {
			fmt.Fprintf(os.Stderr, "❌ Session '%v' not found\n", trackerErr.Details["session_id"])
			fmt.Fprintf(os.Stderr, "Run 'ttydeck list' to see tracked sessions.\n")
		}
		return err

	case errors.ErrCodeProjectNotFound:
		if trackerErr, ok := err.(*errors.TrackerError); ok {
			fmt.Fprintf(os.Stderr, "❌ Project '%v' not found\n", trackerErr.Details["project_id"])
			fmt.Fprintf(os.Stderr, "Run 'ttydeck list' to see projects and their ids.\n")
		}
		return err

	case errors.ErrCodeDaemonUnreachable:
		fmt.Fprintf(os.Stderr, "❌ The ttydeck daemon is not reachable\n")
		fmt.Fprintf(os.Stderr, "Start it with 'ttydeck daemon start', or check 'ttydeck daemon status'.\n")
		return err

	case errors.ErrCodeSocketBind:
		if trackerErr, ok := err.(*errors.TrackerError); ok {
			fmt.Fprintf(os.Stderr, "❌ Could not bind socket %v\n", trackerErr.Details["socket"])
			fmt.Fprintf(os.Stderr, "Another daemon may be running; check 'ttydeck daemon status'.\n")
		}
		return err

	case errors.ErrCodeStoreCorrupt:
		fmt.Fprintf(os.Stderr, "❌ The session store could not be parsed and was reset to empty\n")
		fmt.Fprintf(os.Stderr, "Previously tracked sessions will reappear as their agents emit events.\n")
		return err

	default:
		// Generic error handling
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if trackerErr, ok := err.(*errors.TrackerError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", trackerErr.ToJSON())
			}
		}
		return err
	}
}
