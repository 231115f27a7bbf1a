package process

import (
	"os"
	"syscall"
)

// IsProcessAlive checks if a process with the given PID is still running.
// Works on Unix-like systems (macOS, Linux) by sending signal 0.
func IsProcessAlive(pid int) bool {
	// PID 0 or less is invalid.
	if pid <= 0 {
		return false
	}

	// Find the process. This doesn't fail on Unix if the process doesn't exist.
	process, err := os.FindProcess(pid)
	if err != nil {
		return false // Should not happen on Unix-like systems.
	}

	// Signal 0 checks for existence without delivering anything.
	// nil means alive with permission; EPERM means alive without permission
	// (e.g., owned by root); ESRCH means gone.
	err = process.Signal(syscall.Signal(0))

	return err == nil || os.IsPermission(err)
}
