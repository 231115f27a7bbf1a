package cleanup

import (
	"testing"
	"time"

	"github.com/ttydeck/ttydeck/pkg/models"
	"github.com/ttydeck/ttydeck/pkg/store"
)

// deadTTYs reports every listed path as dead and all others as alive.
type deadTTYs map[string]bool

func (d deadTTYs) Alive(path string) bool { return !d[path] }

func seedSession(st *store.Store, key, tty string, updatedAt time.Time) {
	st.Sessions[key] = &models.Session{
		SessionID: key,
		Cwd:       "/work/" + key,
		TTY:       tty,
		Status:    models.StatusRunning,
		UpdatedAt: updatedAt,
	}
	st.AddSession(key)
}

func TestPassTimeout(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := store.New()
	seedSession(st, "idle", "/dev/ttys001", now.Add(-10*time.Minute))
	seedSession(st, "busy", "/dev/ttys002", now.Add(-time.Minute))

	removed := Pass(st, deadTTYs{}, 5*time.Minute, now)

	if len(removed) != 1 || removed[0].SessionID != "idle" {
		t.Fatalf("removed = %+v, want only idle", removed)
	}
	if removed[0].Reason != ReasonTimeout {
		t.Errorf("reason = %q, want %q", removed[0].Reason, ReasonTimeout)
	}
	if removed[0].Elapsed != 10*time.Minute {
		t.Errorf("elapsed = %v, want 10m", removed[0].Elapsed)
	}
	if st.Sessions["busy"] == nil {
		t.Error("fresh session was evicted")
	}
}

func TestPassTTYClosed(t *testing.T) {
	now := time.Now()
	st := store.New()
	seedSession(st, "gone", "/dev/ttys001", now)
	seedSession(st, "here", "/dev/ttys002", now)

	removed := Pass(st, deadTTYs{"/dev/ttys001": true}, time.Hour, now)

	if len(removed) != 1 || removed[0].SessionID != "gone" {
		t.Fatalf("removed = %+v, want only gone", removed)
	}
	if removed[0].Reason != ReasonTTYClosed {
		t.Errorf("reason = %q, want %q", removed[0].Reason, ReasonTTYClosed)
	}
	if removed[0].TTY != "/dev/ttys001" || removed[0].Cwd != "/work/gone" {
		t.Errorf("removal detail = %+v", removed[0])
	}
}

func TestPassTTYClosedTakesPriority(t *testing.T) {
	now := time.Now()
	st := store.New()
	// Both idle past the timeout and on a dead terminal.
	seedSession(st, "s1", "/dev/ttys001", now.Add(-time.Hour))

	removed := Pass(st, deadTTYs{"/dev/ttys001": true}, time.Minute, now)

	if len(removed) != 1 {
		t.Fatalf("removed = %+v, want one", removed)
	}
	if removed[0].Reason != ReasonTTYClosed {
		t.Errorf("reason = %q, want %q reported over timeout", removed[0].Reason, ReasonTTYClosed)
	}
}

func TestPassZeroTimeoutDisablesIdleCheck(t *testing.T) {
	now := time.Now()
	st := store.New()
	seedSession(st, "ancient", "/dev/ttys001", now.Add(-1000*time.Hour))
	seedSession(st, "dead", "/dev/ttys002", now.Add(-1000*time.Hour))

	removed := Pass(st, deadTTYs{"/dev/ttys002": true}, 0, now)

	// The idle session survives; the dead-tty one still goes, proving
	// the checks are independent.
	if st.Sessions["ancient"] == nil {
		t.Error("idle session evicted with timeout disabled")
	}
	if len(removed) != 1 || removed[0].SessionID != "dead" || removed[0].Reason != ReasonTTYClosed {
		t.Errorf("removed = %+v, want dead for tty_closed", removed)
	}
}

func TestPassSkipsUnattachedSessions(t *testing.T) {
	now := time.Now()
	st := store.New()
	seedSession(st, "bg", "", now)

	removed := Pass(st, deadTTYs{"": true}, 0, now)

	if len(removed) != 0 || st.Sessions["bg"] == nil {
		t.Errorf("unattached session evicted: %+v", removed)
	}
}

func TestPassClearsDisplayEntries(t *testing.T) {
	now := time.Now()
	st := store.New()
	seedSession(st, "gone", "/dev/ttys001", now)
	p := st.CreateProject("alpha")
	st.AssignToProject("gone", p.ID)

	Pass(st, deadTTYs{"/dev/ttys001": true}, 0, now)

	for _, e := range st.DisplayOrder {
		if e.Kind == models.EntrySession && e.Key == "gone" {
			t.Fatal("display entry survived the same pass as the removal")
		}
	}
	// The project structure is untouched.
	if st.Projects[p.ID] == nil {
		t.Error("project removed by cleanup")
	}
}
