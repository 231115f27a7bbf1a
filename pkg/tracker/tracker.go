// Package tracker is the service facade over the session store: every
// read and mutation collaborators perform goes through one Tracker,
// which serializes store access within the process and schedules the
// debounced persistence behind each mutation.
//
// The same Tracker instance serves as the daemon's request executor
// and as the direct-mutation fallback when no daemon is running; it
// satisfies daemon.Mutator for both roles.
package tracker

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/audit"
	"github.com/ttydeck/ttydeck/pkg/cleanup"
	"github.com/ttydeck/ttydeck/pkg/daemon"
	"github.com/ttydeck/ttydeck/pkg/models"
	"github.com/ttydeck/ttydeck/pkg/profiling"
	"github.com/ttydeck/ttydeck/pkg/storage"
	"github.com/ttydeck/ttydeck/pkg/store"
)

// Options carry the tunables a Tracker does not derive from its
// collaborators.
type Options struct {
	// SocketPath locates the coordinator daemon socket for
	// reachability probes.
	SocketPath string
	// SessionTimeout is the idle budget before eviction. Zero disables
	// the idle check.
	SessionTimeout time.Duration
	// CleanupInterval is the period of the background eviction loop.
	CleanupInterval time.Duration
}

// Tracker owns store access for one process.
type Tracker struct {
	mu       sync.Mutex
	cache    *storage.Cache
	liveness cleanup.Liveness
	audit    *audit.Log
	engine   *cleanup.Engine

	socketPath string
	timeout    time.Duration

	now func() time.Time
	log *logrus.Entry
}

// New wires a tracker over its collaborators. A nil auditLog disables
// the eviction trail.
func New(cache *storage.Cache, liveness cleanup.Liveness, auditLog *audit.Log, opts Options) *Tracker {
	t := &Tracker{
		cache:      cache,
		liveness:   liveness,
		audit:      auditLog,
		socketPath: opts.SocketPath,
		timeout:    opts.SessionTimeout,
		now:        time.Now,
		log:        logging.NewLogger("tracker"),
	}
	t.engine = cleanup.NewEngine(opts.CleanupInterval, func() { t.RunCleanupOnce() })
	return t
}

// ApplyEvent validates and folds one event into the store. An absent
// cwd defaults to this process's working directory, which for a hook
// process is the directory the agent runs in.
func (t *Tracker) ApplyEvent(ev *models.HookEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.Cwd == "" {
		if cwd, err := os.Getwd(); err == nil {
			ev.Cwd = cwd
		}
	}

	st := t.cache.Read()
	if err := st.ApplyEvent(ev, t.now()); err != nil {
		return errors.EventInvalid(err)
	}
	t.cache.ScheduleWrite(st)
	return nil
}

// ListSessions returns the sessions grouped for rendering. Ordering
// corruption self-heals here: a reconcile pass runs before every
// listing and any repair is persisted.
func (t *Tracker) ListSessions() []store.Group {
	defer profiling.Start("tracker.ListSessions").Stop()
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if st.Reconcile() {
		t.log.Debug("Display order repaired during listing")
		st.UpdatedAt = t.now()
		t.cache.ScheduleWrite(st)
	}
	return st.Grouped()
}

// Sessions returns all live sessions flat, in display order.
func (t *Tracker) Sessions() []*models.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cache.Read().OrderedSessions()
}

// Projects returns the projects in display order, ungrouped excluded.
func (t *Tracker) Projects() []*models.Project {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	var list []*models.Project
	for _, e := range st.DisplayOrder {
		if e.Kind != models.EntryProject || e.IsUngrouped() {
			continue
		}
		if p := st.Projects[e.ID]; p != nil {
			list = append(list, p)
		}
	}
	return list
}

// RemoveSession removes one session by key.
func (t *Tracker) RemoveSession(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if st.Sessions[key] == nil {
		return errors.SessionNotFound(key)
	}
	st.RemoveSession(key)
	t.persist(st)
	return nil
}

// ClearSessions removes every session, keeping project structure.
func (t *Tracker) ClearSessions() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	st.ClearSessions()
	t.persist(st)
	return nil
}

// ClearProjects removes every project grouping; sessions survive
// ungrouped in their current relative order.
func (t *Tracker) ClearProjects() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	st.ClearAllProjects()
	t.persist(st)
	return nil
}

// ClearAll resets the store to empty.
func (t *Tracker) ClearAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	st.ClearAll()
	t.persist(st)
	return nil
}

// CreateProject allocates a project with the given name.
func (t *Tracker) CreateProject(name string) (*models.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "project name is required")
	}
	st := t.cache.Read()
	p := st.CreateProject(name)
	t.persist(st)
	return p, nil
}

// DeleteProject removes a project; its sessions return to the
// ungrouped group.
func (t *Tracker) DeleteProject(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if !st.DeleteProject(id) {
		return errors.ProjectNotFound(id)
	}
	t.persist(st)
	return nil
}

// AssignToProject moves a session under a project header. An empty
// project id assigns to the ungrouped group.
func (t *Tracker) AssignToProject(key, projectID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if st.Sessions[key] == nil {
		return errors.SessionNotFound(key)
	}
	if projectID != models.UngroupedID && st.Projects[projectID] == nil {
		return errors.ProjectNotFound(projectID)
	}
	st.AssignToProject(key, projectID)
	t.persist(st)
	return nil
}

// MoveSession swaps a session with its display neighbor. Returns false
// without mutating when the move hits a boundary.
func (t *Tracker) MoveSession(key string, dir store.Direction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if !st.MoveSession(key, dir) {
		return false
	}
	t.persist(st)
	return true
}

// ReorderProject moves a project block past its sibling. Returns false
// without mutating when the move would cross the ungrouped sentinel.
func (t *Tracker) ReorderProject(id string, dir store.Direction) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if !st.ReorderProject(id, dir) {
		return false
	}
	t.persist(st)
	return true
}

// ResolveSession finds a session by key or unique key prefix.
func (t *Tracker) ResolveSession(ref string) (*models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ref == "" {
		return nil, errors.SessionNotFound(ref)
	}
	st := t.cache.Read()
	if s := st.Sessions[ref]; s != nil {
		return s, nil
	}
	var match *models.Session
	for key, s := range st.Sessions {
		if !strings.HasPrefix(key, ref) {
			continue
		}
		if match != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "session prefix %q is ambiguous", ref)
		}
		match = s
	}
	if match == nil {
		return nil, errors.SessionNotFound(ref)
	}
	return match, nil
}

// ResolveProject finds a project by id or exact name. Name matches must
// be unique.
func (t *Tracker) ResolveProject(ref string) (*models.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	if p := st.Projects[ref]; p != nil {
		return p, nil
	}
	var match *models.Project
	for _, p := range st.Projects {
		if p.Name != ref {
			continue
		}
		if match != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "project name %q is ambiguous, use the id", ref)
		}
		match = p
	}
	if match == nil {
		return nil, errors.ProjectNotFound(ref)
	}
	return match, nil
}

// RunCleanupOnce performs one eviction pass: idle sessions past the
// timeout and sessions on dead terminals are removed, audited, and the
// store write scheduled.
func (t *Tracker) RunCleanupOnce() []cleanup.Removed {
	defer profiling.Start("tracker.CleanupPass").Stop()
	t.mu.Lock()
	defer t.mu.Unlock()

	st := t.cache.Read()
	removed := cleanup.Pass(st, t.liveness, t.timeout, t.now())
	for _, r := range removed {
		if t.audit != nil {
			t.audit.Append(audit.Record{
				Time:      t.now(),
				SessionID: r.SessionID,
				Cwd:       r.Cwd,
				TTY:       r.TTY,
				Reason:    r.Reason,
				ElapsedMs: r.Elapsed.Milliseconds(),
			})
		}
		t.log.WithFields(logrus.Fields{
			"session_id": r.SessionID,
			"reason":     r.Reason,
			"elapsed":    r.Elapsed,
		}).Info("Evicted session")
	}
	if len(removed) > 0 {
		t.persist(st)
	}
	return removed
}

// AcquireCleanup registers this caller as an owner of the periodic
// cleanup loop. Owners share one timer; pair with ReleaseCleanup.
func (t *Tracker) AcquireCleanup() {
	t.engine.Acquire()
}

// ReleaseCleanup drops one cleanup loop owner.
func (t *Tracker) ReleaseCleanup() {
	t.engine.Release()
}

// IsDaemonReachable reports whether a coordinator daemon currently
// answers on the configured socket.
func (t *Tracker) IsDaemonReachable() bool {
	return daemon.IsRunning(t.socketPath)
}

// Flush writes any pending store state synchronously. One-shot callers
// run this before exit.
func (t *Tracker) Flush() error {
	return t.cache.Flush()
}

// Reset drops the in-memory snapshot so the next read loads fresh from
// disk. Used after an external process mutated the store file.
func (t *Tracker) Reset() {
	t.cache.Reset()
}

// persist stamps the store and schedules the debounced write. Called
// with the mutex held.
func (t *Tracker) persist(st *store.Store) {
	st.UpdatedAt = t.now()
	t.cache.ScheduleWrite(st)
}

// The tracker is both the daemon's executor and the client fallback.
var _ daemon.Mutator = (*Tracker)(nil)
