package store

import (
	"testing"

	"github.com/ttydeck/ttydeck/pkg/models"
)

// addTestSession registers a session and its display entry. Entries insert
// at the top of the ungrouped group, so the last-added session renders
// first.
func addTestSession(s *Store, key string) {
	s.Sessions[key] = &models.Session{SessionID: key, Status: models.StatusRunning}
	s.AddSession(key)
}

// orderKeys flattens the display order for compact comparisons: project
// headers render as "P:<id>" and sessions as their key.
func orderKeys(s *Store) []string {
	var out []string
	for _, e := range s.DisplayOrder {
		if e.Kind == models.EntryProject {
			out = append(out, "P:"+e.ID)
		} else {
			out = append(out, e.Key)
		}
	}
	return out
}

func sameOrder(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestNewStoreIsWellFormed(t *testing.T) {
	s := New()
	if s.Sessions == nil || s.Projects == nil {
		t.Fatal("New() returned nil maps")
	}
	if len(s.DisplayOrder) != 1 || !s.DisplayOrder[0].IsUngrouped() {
		t.Fatalf("New() display order = %v, want single ungrouped header", s.DisplayOrder)
	}
}

func TestAddSession(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	addTestSession(s, "s2")

	want := []string{"P:", "s2", "s1"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	// Adding an existing key must not duplicate the entry.
	s.AddSession("s1")
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order after re-add = %v, want %v", got, want)
	}
}

func TestRemoveSession(t *testing.T) {
	s := New()
	addTestSession(s, "s1")

	s.RemoveSession("s1")
	if s.Sessions["s1"] != nil {
		t.Error("session not deleted from map")
	}
	if got := orderKeys(s); !sameOrder(got, []string{"P:"}) {
		t.Errorf("order = %v, want just the ungrouped header", got)
	}

	// Idempotent.
	s.RemoveSession("s1")
	s.RemoveSession("never-existed")
}

func TestAssignToProjectRoundTrip(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")

	s.AssignToProject("s1", p.ID)

	got, ok := s.ProjectOf("s1")
	if !ok || got != p.ID {
		t.Errorf("ProjectOf(s1) = %q, %v, want %q, true", got, ok, p.ID)
	}

	// Assigning back to ungrouped.
	s.AssignToProject("s1", "")
	if id, ok := s.ProjectOf("s1"); ok {
		t.Errorf("ProjectOf(s1) after ungroup = %q, want none", id)
	}

	// Unknown project ids fall back to ungrouped.
	s.AssignToProject("s1", "nope")
	if id, ok := s.ProjectOf("s1"); ok {
		t.Errorf("ProjectOf(s1) after unknown assign = %q, want none", id)
	}
}

func TestAssignPlacesSessionDirectlyUnderHeader(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	addTestSession(s, "s2")
	p := s.CreateProject("alpha")

	s.AssignToProject("s1", p.ID)

	want := []string{"P:" + p.ID, "s1", "P:", "s2"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestMoveSessionBoundaries(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	addTestSession(s, "s2")
	// Order: [P:, s2, s1]

	t.Run("up against the first header fails unchanged", func(t *testing.T) {
		before := orderKeys(s)
		if s.MoveSession("s2", Up) {
			t.Error("MoveSession(s2, up) = true, want false")
		}
		if got := orderKeys(s); !sameOrder(got, before) {
			t.Errorf("order mutated: %v, want %v", got, before)
		}
	})

	t.Run("down past the end fails unchanged", func(t *testing.T) {
		before := orderKeys(s)
		if s.MoveSession("s1", Down) {
			t.Error("MoveSession(s1, down) = true, want false")
		}
		if got := orderKeys(s); !sameOrder(got, before) {
			t.Errorf("order mutated: %v, want %v", got, before)
		}
	})

	t.Run("swap within the group", func(t *testing.T) {
		if !s.MoveSession("s1", Up) {
			t.Fatal("MoveSession(s1, up) = false, want true")
		}
		want := []string{"P:", "s1", "s2"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("unknown session fails", func(t *testing.T) {
		if s.MoveSession("ghost", Up) {
			t.Error("MoveSession(ghost, up) = true, want false")
		}
	})
}

func TestMoveSessionAcrossGroups(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")
	s.AssignToProject("s1", p.ID)
	addTestSession(s, "s2")
	// Order: [P:alpha, s1, P:, s2]

	// Moving s2 up swaps it with the ungrouped header, landing it in alpha.
	if !s.MoveSession("s2", Up) {
		t.Fatal("MoveSession(s2, up) = false, want true")
	}
	if id, ok := s.ProjectOf("s2"); !ok || id != p.ID {
		t.Errorf("ProjectOf(s2) = %q, %v, want %q, true", id, ok, p.ID)
	}

	// And moving it back down returns it to ungrouped.
	if !s.MoveSession("s2", Down) {
		t.Fatal("MoveSession(s2, down) = false, want true")
	}
	if id, ok := s.ProjectOf("s2"); ok {
		t.Errorf("ProjectOf(s2) = %q, want none", id)
	}
}

func TestCreateProjectLandsAboveUngrouped(t *testing.T) {
	s := New()
	p1 := s.CreateProject("alpha")
	p2 := s.CreateProject("beta")

	want := []string{"P:" + p1.ID, "P:" + p2.ID, "P:"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if s.Projects[p1.ID] == nil || s.Projects[p2.ID] == nil {
		t.Error("projects missing from map")
	}
	if p1.ID == p2.ID {
		t.Error("project ids collide")
	}
}

func TestDeleteProjectRelocatesMembers(t *testing.T) {
	s := New()
	addTestSession(s, "s2")
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")
	s.AssignToProject("s1", p.ID)
	// Order: [P:alpha, s1, P:, s2]

	if !s.DeleteProject(p.ID) {
		t.Fatal("DeleteProject returned false")
	}

	// s1 rejoins ungrouped appended after the existing members.
	want := []string{"P:", "s2", "s1"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if s.Projects[p.ID] != nil {
		t.Error("project still in map")
	}

	if s.DeleteProject("ghost") {
		t.Error("DeleteProject(ghost) = true, want false")
	}
	if s.DeleteProject(models.UngroupedID) {
		t.Error("DeleteProject(ungrouped) = true, want false")
	}
}

func TestReorderProject(t *testing.T) {
	s := New()
	pa := s.CreateProject("alpha")
	pb := s.CreateProject("beta")
	addTestSession(s, "s1")
	s.AssignToProject("s1", pa.ID)
	// Order: [P:alpha, s1, P:beta, P:]

	t.Run("block moves with its sessions", func(t *testing.T) {
		if !s.ReorderProject(pa.ID, Down) {
			t.Fatal("ReorderProject(alpha, down) = false, want true")
		}
		want := []string{"P:" + pb.ID, "P:" + pa.ID, "s1", "P:"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("cannot cross the ungrouped sentinel", func(t *testing.T) {
		before := orderKeys(s)
		if s.ReorderProject(pa.ID, Down) {
			t.Error("ReorderProject(alpha, down) across ungrouped = true, want false")
		}
		if got := orderKeys(s); !sameOrder(got, before) {
			t.Errorf("order mutated: %v, want %v", got, before)
		}
	})

	t.Run("first project cannot move up", func(t *testing.T) {
		if s.ReorderProject(pb.ID, Up) {
			t.Error("ReorderProject(beta, up) = true, want false")
		}
	})

	t.Run("ungrouped is immovable", func(t *testing.T) {
		if s.ReorderProject(models.UngroupedID, Up) || s.ReorderProject(models.UngroupedID, Down) {
			t.Error("ungrouped sentinel moved")
		}
	})

	t.Run("moving back up", func(t *testing.T) {
		if !s.ReorderProject(pa.ID, Up) {
			t.Fatal("ReorderProject(alpha, up) = false, want true")
		}
		want := []string{"P:" + pa.ID, "s1", "P:" + pb.ID, "P:"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})
}

func TestUngroupedInvariant(t *testing.T) {
	// After any sequence of project lifecycle calls there is exactly one
	// ungrouped header and it is the last header in the sequence.
	s := New()
	check := func(step string) {
		t.Helper()
		count := 0
		last := -1
		for i, e := range s.DisplayOrder {
			if e.Kind != models.EntryProject {
				continue
			}
			last = i
			if e.IsUngrouped() {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("%s: ungrouped header count = %d, want 1", step, count)
		}
		if !s.DisplayOrder[last].IsUngrouped() {
			t.Fatalf("%s: last header is %v, want ungrouped", step, s.DisplayOrder[last])
		}
	}

	check("new")
	pa := s.CreateProject("alpha")
	check("create alpha")
	pb := s.CreateProject("beta")
	check("create beta")
	s.DeleteProject(pa.ID)
	check("delete alpha")
	s.CreateProject("gamma")
	check("create gamma")
	s.ClearAllProjects()
	check("clear all")
	s.DeleteProject(pb.ID)
	check("delete after clear")
}

func TestClearAllProjects(t *testing.T) {
	s := New()
	addTestSession(s, "s2")
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")
	s.AssignToProject("s2", p.ID)
	// Order: [P:alpha, s2, P:, s1]

	s.ClearAllProjects()

	// Sessions keep their relative order, now all ungrouped.
	want := []string{"P:", "s2", "s1"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if len(s.Projects) != 0 {
		t.Errorf("projects = %v, want empty", s.Projects)
	}
}

func TestClearSessionsKeepsProjects(t *testing.T) {
	s := New()
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")
	s.AssignToProject("s1", p.ID)

	s.ClearSessions()

	if len(s.Sessions) != 0 {
		t.Errorf("sessions = %v, want empty", s.Sessions)
	}
	want := []string{"P:" + p.ID, "P:"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestReconcile(t *testing.T) {
	t.Run("drops dangling session entries", func(t *testing.T) {
		s := New()
		addTestSession(s, "s1")
		s.DisplayOrder = append(s.DisplayOrder, models.SessionEntry("ghost"))

		if !s.Reconcile() {
			t.Fatal("Reconcile() = false, want true")
		}
		want := []string{"P:", "s1"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("keeps headers whose project record was lost", func(t *testing.T) {
		s := New()
		p := s.CreateProject("alpha")
		delete(s.Projects, p.ID)

		s.Reconcile()
		if s.headerIndex(p.ID) < 0 {
			t.Error("header for orphaned project id was dropped")
		}
	})

	t.Run("restores missing ungrouped sentinel", func(t *testing.T) {
		s := New()
		addTestSession(s, "s1")
		s.DisplayOrder = []models.DisplayEntry{models.SessionEntry("s1")}

		if !s.Reconcile() {
			t.Fatal("Reconcile() = false, want true")
		}
		want := []string{"P:", "s1"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("moves ungrouped back to last header", func(t *testing.T) {
		s := New()
		p := s.CreateProject("alpha")
		addTestSession(s, "s1")
		// Corrupt: place alpha's header after the ungrouped block.
		s.DisplayOrder = []models.DisplayEntry{
			models.ProjectEntry(models.UngroupedID),
			models.SessionEntry("s1"),
			models.ProjectEntry(p.ID),
		}

		if !s.Reconcile() {
			t.Fatal("Reconcile() = false, want true")
		}
		want := []string{"P:" + p.ID, "P:", "s1"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("collapses duplicates", func(t *testing.T) {
		s := New()
		addTestSession(s, "s1")
		s.DisplayOrder = append(s.DisplayOrder, models.SessionEntry("s1"))
		s.DisplayOrder = append(s.DisplayOrder, models.ProjectEntry(models.UngroupedID))

		if !s.Reconcile() {
			t.Fatal("Reconcile() = false, want true")
		}
		want := []string{"P:", "s1"}
		if got := orderKeys(s); !sameOrder(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("clean store reports no change", func(t *testing.T) {
		s := New()
		addTestSession(s, "s1")
		if s.Reconcile() {
			t.Error("Reconcile() on a clean store = true, want false")
		}
	})
}

func TestScenarioProjectLifecycle(t *testing.T) {
	// Two ungrouped sessions rendered [s1, s2], then a project round trip.
	s := New()
	addTestSession(s, "s2")
	addTestSession(s, "s1")
	// Order: [P:, s1, s2]

	if !s.MoveSession("s1", Down) {
		t.Fatal("MoveSession(s1, down) = false, want true")
	}
	if got := orderKeys(s); !sameOrder(got, []string{"P:", "s2", "s1"}) {
		t.Fatalf("order after move = %v, want [P: s2 s1]", got)
	}

	p := s.CreateProject("p1")
	s.AssignToProject("s1", p.ID)

	// s1 renders directly under p1's header.
	want := []string{"P:" + p.ID, "s1", "P:", "s2"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Fatalf("order after assign = %v, want %v", got, want)
	}
	if id, ok := s.ProjectOf("s1"); !ok || id != p.ID {
		t.Fatalf("ProjectOf(s1) = %q, %v, want %q, true", id, ok, p.ID)
	}

	s.DeleteProject(p.ID)

	// s1 returns to ungrouped, appended after s2.
	want = []string{"P:", "s2", "s1"}
	if got := orderKeys(s); !sameOrder(got, want) {
		t.Fatalf("order after delete = %v, want %v", got, want)
	}
}

func TestGrouped(t *testing.T) {
	s := New()
	addTestSession(s, "s2")
	addTestSession(s, "s1")
	p := s.CreateProject("alpha")
	s.AssignToProject("s1", p.ID)

	groups := s.Grouped()
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].ID != p.ID || groups[0].Name != "alpha" {
		t.Errorf("groups[0] = %+v, want alpha", groups[0])
	}
	if len(groups[0].Sessions) != 1 || groups[0].Sessions[0].SessionID != "s1" {
		t.Errorf("alpha members = %v, want [s1]", groups[0].Sessions)
	}
	if groups[1].ID != models.UngroupedID {
		t.Errorf("groups[1].ID = %q, want ungrouped", groups[1].ID)
	}
	if len(groups[1].Sessions) != 1 || groups[1].Sessions[0].SessionID != "s2" {
		t.Errorf("ungrouped members = %v, want [s2]", groups[1].Sessions)
	}
}
