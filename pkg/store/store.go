// Package store defines the persisted session/project data model and the
// pure, invariant-preserving operations on it. It performs no I/O; loading
// and saving are the persistence cache's job.
//
// The display order is the sole source of truth for both render order and
// project membership: a session belongs to the nearest project header that
// precedes it in the sequence. Two invariants hold across every operation:
// exactly one ungrouped sentinel header exists, and it is always the last
// project header in the sequence.
package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// Direction selects which way a move operation goes.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Store is the root persisted data structure.
type Store struct {
	Sessions     map[string]*models.Session `json:"sessions"`
	Projects     map[string]*models.Project `json:"projects"`
	DisplayOrder []models.DisplayEntry      `json:"displayOrder"`
	UpdatedAt    time.Time                  `json:"updated_at"`
}

// New returns an empty, well-formed store: no sessions, no projects, and a
// display order holding only the ungrouped sentinel.
func New() *Store {
	return &Store{
		Sessions:     make(map[string]*models.Session),
		Projects:     make(map[string]*models.Project),
		DisplayOrder: []models.DisplayEntry{models.ProjectEntry(models.UngroupedID)},
	}
}

// Normalize makes a store loaded from disk safe to operate on: maps are
// allocated and the ungrouped sentinel exists. It does not drop dangling
// references; that is Reconcile's job.
func (s *Store) Normalize() {
	if s.Sessions == nil {
		s.Sessions = make(map[string]*models.Session)
	}
	if s.Projects == nil {
		s.Projects = make(map[string]*models.Project)
	}
	if s.ungroupedIndex() < 0 {
		s.DisplayOrder = append(s.DisplayOrder, models.ProjectEntry(models.UngroupedID))
	}
}

// sessionIndex returns the position of the session entry for key, or -1.
func (s *Store) sessionIndex(key string) int {
	for i, e := range s.DisplayOrder {
		if e.Kind == models.EntrySession && e.Key == key {
			return i
		}
	}
	return -1
}

// headerIndex returns the position of the project header for id, or -1.
func (s *Store) headerIndex(id string) int {
	for i, e := range s.DisplayOrder {
		if e.Kind == models.EntryProject && e.ID == id {
			return i
		}
	}
	return -1
}

// ungroupedIndex returns the position of the ungrouped sentinel, or -1.
func (s *Store) ungroupedIndex() int {
	return s.headerIndex(models.UngroupedID)
}

// blockEnd returns the index just past the contiguous run of session
// entries starting at from: the next project header, or the end of the
// sequence.
func (s *Store) blockEnd(from int) int {
	for i := from; i < len(s.DisplayOrder); i++ {
		if s.DisplayOrder[i].Kind == models.EntryProject {
			return i
		}
	}
	return len(s.DisplayOrder)
}

// insertAt inserts entry e at position i.
func (s *Store) insertAt(i int, e models.DisplayEntry) {
	s.DisplayOrder = append(s.DisplayOrder, models.DisplayEntry{})
	copy(s.DisplayOrder[i+1:], s.DisplayOrder[i:])
	s.DisplayOrder[i] = e
}

// removeAt removes the entry at position i.
func (s *Store) removeAt(i int) {
	s.DisplayOrder = append(s.DisplayOrder[:i], s.DisplayOrder[i+1:]...)
}

// AddSession inserts a session entry immediately after the ungrouped
// sentinel, so new sessions surface at the top of the ungrouped group.
// No-op if the key already has an entry.
func (s *Store) AddSession(key string) {
	if s.sessionIndex(key) >= 0 {
		return
	}
	s.Normalize()
	u := s.ungroupedIndex()
	s.insertAt(u+1, models.SessionEntry(key))
}

// RemoveSession deletes the session and its display entry wherever it
// appears. Idempotent.
func (s *Store) RemoveSession(key string) {
	delete(s.Sessions, key)
	if i := s.sessionIndex(key); i >= 0 {
		s.removeAt(i)
	}
}

// AssignToProject moves the session entry to sit immediately after the
// target project's header. An empty or unknown project id assigns to the
// ungrouped group. Afterwards ProjectOf(key) reports projectID (or nothing
// for ungrouped).
func (s *Store) AssignToProject(key, projectID string) {
	s.Normalize()
	if i := s.sessionIndex(key); i >= 0 {
		s.removeAt(i)
	}
	h := -1
	if projectID != models.UngroupedID {
		h = s.headerIndex(projectID)
	}
	if h < 0 {
		h = s.ungroupedIndex()
	}
	s.insertAt(h+1, models.SessionEntry(key))
}

// ProjectOf returns the id of the project the session currently renders
// under, determined by scanning backward to the nearest preceding project
// header. ok is false when the session is ungrouped or has no entry.
func (s *Store) ProjectOf(key string) (id string, ok bool) {
	i := s.sessionIndex(key)
	if i < 0 {
		return "", false
	}
	for j := i - 1; j >= 0; j-- {
		e := s.DisplayOrder[j]
		if e.Kind == models.EntryProject {
			if e.ID == models.UngroupedID {
				return "", false
			}
			return e.ID, true
		}
	}
	// No header above the session at all; malformed, treated as ungrouped
	// until Reconcile repairs it.
	return "", false
}

// MoveSession swaps the session entry with its immediate neighbor in the
// given direction. Returns false without mutating when the move would put
// the session above the first project header or past the end of the
// sequence.
func (s *Store) MoveSession(key string, dir Direction) bool {
	i := s.sessionIndex(key)
	if i < 0 {
		return false
	}
	switch dir {
	case Up:
		j := i - 1
		if j < 0 {
			return false
		}
		if j == 0 && s.DisplayOrder[j].Kind == models.EntryProject {
			// Nothing may sit above the first header.
			return false
		}
		s.DisplayOrder[i], s.DisplayOrder[j] = s.DisplayOrder[j], s.DisplayOrder[i]
		return true
	case Down:
		if i >= len(s.DisplayOrder)-1 {
			return false
		}
		s.DisplayOrder[i], s.DisplayOrder[i+1] = s.DisplayOrder[i+1], s.DisplayOrder[i]
		return true
	}
	return false
}

// ReorderProject moves the project header together with its contiguous run
// of session entries as one block past the adjacent sibling header. Returns
// false when the move would cross the ungrouped sentinel in either
// direction; ungrouped itself is immovable.
func (s *Store) ReorderProject(id string, dir Direction) bool {
	if id == models.UngroupedID {
		return false
	}
	h := s.headerIndex(id)
	if h < 0 {
		return false
	}
	end := s.blockEnd(h + 1)

	switch dir {
	case Up:
		p := -1
		for j := h - 1; j >= 0; j-- {
			if s.DisplayOrder[j].Kind == models.EntryProject {
				p = j
				break
			}
		}
		if p < 0 || s.DisplayOrder[p].IsUngrouped() {
			return false
		}
		s.swapBlocks(p, h, h, end)
		return true
	case Down:
		if end >= len(s.DisplayOrder) {
			return false
		}
		next := s.DisplayOrder[end]
		if next.IsUngrouped() {
			return false
		}
		nextEnd := s.blockEnd(end + 1)
		s.swapBlocks(h, end, end, nextEnd)
		return true
	}
	return false
}

// swapBlocks exchanges the adjacent ranges [aStart,aEnd) and [bStart,bEnd),
// where aEnd == bStart.
func (s *Store) swapBlocks(aStart, aEnd, bStart, bEnd int) {
	out := make([]models.DisplayEntry, 0, len(s.DisplayOrder))
	out = append(out, s.DisplayOrder[:aStart]...)
	out = append(out, s.DisplayOrder[bStart:bEnd]...)
	out = append(out, s.DisplayOrder[aStart:aEnd]...)
	out = append(out, s.DisplayOrder[bEnd:]...)
	s.DisplayOrder = out
}

// newProjectID allocates an opaque short project token.
func newProjectID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// CreateProject allocates a project and inserts its header immediately
// before the ungrouped sentinel, so new projects land just above the
// ungrouped group in creation order.
func (s *Store) CreateProject(name string) *models.Project {
	s.Normalize()
	p := &models.Project{
		ID:        newProjectID(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	s.Projects[p.ID] = p
	u := s.ungroupedIndex()
	s.insertAt(u, models.ProjectEntry(p.ID))
	return p
}

// DeleteProject removes the project's header and relocates its member
// sessions to the end of the ungrouped group as one contiguous run.
// Returns false if the project does not exist.
func (s *Store) DeleteProject(id string) bool {
	if id == models.UngroupedID {
		return false
	}
	_, inMap := s.Projects[id]
	delete(s.Projects, id)

	h := s.headerIndex(id)
	if h < 0 {
		return inMap
	}
	end := s.blockEnd(h + 1)
	members := make([]models.DisplayEntry, end-h-1)
	copy(members, s.DisplayOrder[h+1:end])
	s.DisplayOrder = append(s.DisplayOrder[:h], s.DisplayOrder[end:]...)
	// The ungrouped sentinel is the last header, so appending lands the
	// members after its existing sessions.
	s.DisplayOrder = append(s.DisplayOrder, members...)
	return true
}

// ClearAllProjects removes every project header except the ungrouped
// sentinel. All session entries become ungrouped, preserving their
// relative order.
func (s *Store) ClearAllProjects() {
	out := make([]models.DisplayEntry, 0, len(s.DisplayOrder))
	out = append(out, models.ProjectEntry(models.UngroupedID))
	for _, e := range s.DisplayOrder {
		if e.Kind == models.EntrySession {
			out = append(out, e)
		}
	}
	s.DisplayOrder = out
	s.Projects = make(map[string]*models.Project)
}

// ClearSessions removes every session and its display entry, keeping the
// project structure intact.
func (s *Store) ClearSessions() {
	s.Sessions = make(map[string]*models.Session)
	out := s.DisplayOrder[:0]
	for _, e := range s.DisplayOrder {
		if e.Kind == models.EntryProject {
			out = append(out, e)
		}
	}
	s.DisplayOrder = out
}

// ClearAll resets the store to its empty well-formed shape.
func (s *Store) ClearAll() {
	s.Sessions = make(map[string]*models.Session)
	s.Projects = make(map[string]*models.Project)
	s.DisplayOrder = []models.DisplayEntry{models.ProjectEntry(models.UngroupedID)}
}

// Reconcile drops display entries that reference nothing live and repairs
// the global invariants. Session entries must reference a live session.
// Project headers are kept even when the project map lost their record:
// an id literally present in the sequence is treated as valid, which
// protects grouping structure against partial write corruption. Duplicate
// entries are collapsed to their first occurrence. Returns whether
// anything changed.
func (s *Store) Reconcile() bool {
	changed := false
	if s.Sessions == nil || s.Projects == nil {
		s.Normalize()
		changed = true
	}

	seenSessions := make(map[string]bool)
	seenProjects := make(map[string]bool)
	out := make([]models.DisplayEntry, 0, len(s.DisplayOrder))
	for _, e := range s.DisplayOrder {
		switch e.Kind {
		case models.EntrySession:
			if e.Key == "" || s.Sessions[e.Key] == nil || seenSessions[e.Key] {
				changed = true
				continue
			}
			seenSessions[e.Key] = true
			out = append(out, e)
		case models.EntryProject:
			if seenProjects[e.ID] {
				changed = true
				continue
			}
			seenProjects[e.ID] = true
			out = append(out, e)
		default:
			changed = true
		}
	}
	s.DisplayOrder = out

	if !seenProjects[models.UngroupedID] {
		s.DisplayOrder = append(s.DisplayOrder, models.ProjectEntry(models.UngroupedID))
		changed = true
	}

	// The ungrouped sentinel must be the last header. If corruption left a
	// header after it, move the whole ungrouped block to the end.
	u := s.ungroupedIndex()
	if s.lastHeaderIndex() != u {
		end := s.blockEnd(u + 1)
		block := make([]models.DisplayEntry, end-u)
		copy(block, s.DisplayOrder[u:end])
		s.DisplayOrder = append(s.DisplayOrder[:u], s.DisplayOrder[end:]...)
		s.DisplayOrder = append(s.DisplayOrder, block...)
		changed = true
	}

	// Sessions stranded above the first header have no project to belong
	// to; move them to the end of the ungrouped group.
	if len(s.DisplayOrder) > 0 && s.DisplayOrder[0].Kind == models.EntrySession {
		var orphans []models.DisplayEntry
		i := 0
		for i < len(s.DisplayOrder) && s.DisplayOrder[i].Kind == models.EntrySession {
			orphans = append(orphans, s.DisplayOrder[i])
			i++
		}
		s.DisplayOrder = append(s.DisplayOrder[i:], orphans...)
		changed = true
	}

	return changed
}

// lastHeaderIndex returns the position of the last project header, or -1.
func (s *Store) lastHeaderIndex() int {
	for i := len(s.DisplayOrder) - 1; i >= 0; i-- {
		if s.DisplayOrder[i].Kind == models.EntryProject {
			return i
		}
	}
	return -1
}

// Group is one rendered project section: the header and its member
// sessions in display order. The ungrouped group carries the empty id.
type Group struct {
	ID       string
	Name     string
	Sessions []*models.Session
}

// Grouped flattens the display order into render-ready groups. Entries
// referencing nothing live are skipped; callers that need them dropped
// durably run Reconcile first.
func (s *Store) Grouped() []Group {
	var groups []Group
	var cur *Group
	for _, e := range s.DisplayOrder {
		switch e.Kind {
		case models.EntryProject:
			name := ""
			if p := s.Projects[e.ID]; p != nil {
				name = p.Name
			} else if e.ID != models.UngroupedID {
				// Header survived a partial write that lost the project
				// record; render the id so the grouping stays visible.
				name = e.ID
			}
			groups = append(groups, Group{ID: e.ID, Name: name})
			cur = &groups[len(groups)-1]
		case models.EntrySession:
			sess := s.Sessions[e.Key]
			if sess == nil || cur == nil {
				continue
			}
			cur.Sessions = append(cur.Sessions, sess)
		}
	}
	return groups
}

// OrderedSessions returns all live sessions in display order.
func (s *Store) OrderedSessions() []*models.Session {
	var list []*models.Session
	for _, e := range s.DisplayOrder {
		if e.Kind != models.EntrySession {
			continue
		}
		if sess := s.Sessions[e.Key]; sess != nil {
			list = append(list, sess)
		}
	}
	return list
}
