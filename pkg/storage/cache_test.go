package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ttydeck/ttydeck/pkg/models"
	"github.com/ttydeck/ttydeck/pkg/store"
)

func testCache(t *testing.T, debounce time.Duration) (*Cache, string) {
	t.Helper()
	t.Setenv("TTYDECK_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "sessions.json")
	return NewCache(path, debounce), path
}

func TestReadMissingFile(t *testing.T) {
	c, _ := testCache(t, time.Hour)

	st := c.Read()
	if st == nil {
		t.Fatal("Read() = nil")
	}
	if len(st.Sessions) != 0 || len(st.Projects) != 0 {
		t.Errorf("store not empty: %d sessions, %d projects", len(st.Sessions), len(st.Projects))
	}
	if len(st.DisplayOrder) != 1 || !st.DisplayOrder[0].IsUngrouped() {
		t.Errorf("display order = %v, want single ungrouped header", st.DisplayOrder)
	}
}

func TestReadCorruptFile(t *testing.T) {
	c, path := testCache(t, time.Hour)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	st := c.Read()
	if st == nil {
		t.Fatal("Read() = nil for corrupt file")
	}
	if len(st.Sessions) != 0 {
		t.Errorf("sessions = %v, want empty", st.Sessions)
	}
	if len(st.DisplayOrder) != 1 || !st.DisplayOrder[0].IsUngrouped() {
		t.Errorf("display order = %v, want single ungrouped header", st.DisplayOrder)
	}
}

func TestRoundTrip(t *testing.T) {
	c, _ := testCache(t, time.Hour)

	st := c.Read()
	st.Sessions["s1"] = &models.Session{SessionID: "s1", Status: models.StatusRunning}
	st.AddSession("s1")
	p := st.CreateProject("alpha")
	st.AssignToProject("s1", p.ID)

	c.ScheduleWrite(st)
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	c.Reset()
	got := c.Read()
	if got == st {
		t.Fatal("Reset() did not drop the cached snapshot")
	}
	if got.Sessions["s1"] == nil {
		t.Fatal("session lost in round trip")
	}
	if got.Sessions["s1"].Status != models.StatusRunning {
		t.Errorf("status = %s, want running", got.Sessions["s1"].Status)
	}
	if got.Projects[p.ID] == nil || got.Projects[p.ID].Name != "alpha" {
		t.Errorf("project lost in round trip: %v", got.Projects)
	}
	if id, ok := got.ProjectOf("s1"); !ok || id != p.ID {
		t.Errorf("ProjectOf(s1) = %q, %v, want %q, true", id, ok, p.ID)
	}
}

func TestWriteCoalescing(t *testing.T) {
	c, path := testCache(t, time.Hour)

	// Five schedules inside one debounce window must produce no
	// intermediate writes, and the flush lands only the last snapshot.
	for i := 1; i <= 5; i++ {
		st := store.New()
		key := fmt.Sprintf("v%d", i)
		st.Sessions[key] = &models.Session{SessionID: key}
		st.AddSession(key)
		c.ScheduleWrite(st)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("store file exists before flush (stat err = %v)", err)
	}

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	var got store.Store
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parse store file: %v", err)
	}
	if len(got.Sessions) != 1 || got.Sessions["v5"] == nil {
		t.Errorf("file holds sessions %v, want only v5", got.Sessions)
	}
}

func TestDebouncedWriteFires(t *testing.T) {
	c, path := testCache(t, 10*time.Millisecond)

	st := c.Read()
	st.Sessions["s1"] = &models.Session{SessionID: "s1"}
	st.AddSession("s1")
	c.ScheduleWrite(st)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced write never reached disk")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Once written, a flush has nothing left to do.
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() after debounce error = %v", err)
	}
}

func TestFlushWithoutPending(t *testing.T) {
	c, path := testCache(t, time.Hour)

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("flush with nothing pending created a file (stat err = %v)", err)
	}
}

func TestResetDropsPendingWrite(t *testing.T) {
	c, path := testCache(t, time.Hour)

	c.ScheduleWrite(store.New())
	c.Reset()

	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("write survived reset (stat err = %v)", err)
	}
}

func TestReadReturnsCachedSnapshot(t *testing.T) {
	c, _ := testCache(t, time.Hour)

	first := c.Read()
	if c.Read() != first {
		t.Error("second Read() returned a different snapshot")
	}
}
