// Package cleanup evicts dead sessions from the store: sessions idle
// past the configured timeout, and sessions whose terminal device no
// longer exists.
package cleanup

import (
	"time"

	"github.com/ttydeck/ttydeck/pkg/store"
)

// Removal reasons recorded in the audit log.
const (
	ReasonTimeout   = "timeout"
	ReasonTTYClosed = "tty_closed"
)

// Liveness answers whether a terminal device is still alive.
type Liveness interface {
	Alive(path string) bool
}

// Removed describes one eviction performed by a pass.
type Removed struct {
	SessionID string
	Cwd       string
	TTY       string
	Reason    string
	Elapsed   time.Duration
}

// Pass scans the store once, removes every dead session together with
// its display entry, and returns the evictions. The two checks are
// independent and both run every pass:
//
//   - timeout: elapsed idle time exceeds timeout. A zero timeout
//     disables this check; sessions then live until their terminal
//     closes or they are removed manually.
//   - tty_closed: the session's terminal is gone. Sessions without a
//     tty are unattached and never fail this check.
//
// When both hold, tty_closed is reported as the reason.
func Pass(st *store.Store, liveness Liveness, timeout time.Duration, now time.Time) []Removed {
	var removed []Removed
	for key, sess := range st.Sessions {
		elapsed := now.Sub(sess.UpdatedAt)

		reason := ""
		if timeout > 0 && elapsed > timeout {
			reason = ReasonTimeout
		}
		if sess.TTY != "" && !liveness.Alive(sess.TTY) {
			reason = ReasonTTYClosed
		}
		if reason == "" {
			continue
		}

		removed = append(removed, Removed{
			SessionID: key,
			Cwd:       sess.Cwd,
			TTY:       sess.TTY,
			Reason:    reason,
			Elapsed:   elapsed,
		})
		st.RemoveSession(key)
	}
	return removed
}
