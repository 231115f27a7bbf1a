package models

// EntryKind tags a display order entry as a project header or a session
// reference.
type EntryKind string

const (
	EntryProject EntryKind = "project"
	EntrySession EntryKind = "session"
)

// UngroupedID is the reserved project id for the default "ungrouped" group.
// It is never stored in the project map; it exists only as the sentinel
// header entry in the display order.
const UngroupedID = ""

// DisplayEntry is one element of the display order: either a project header
// (ID set) or a session reference (Key set). The ordered sequence of these
// entries is the sole source of truth for render order and for project
// membership, which is derived positionally rather than stored on the
// session.
type DisplayEntry struct {
	Kind EntryKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
	Key  string    `json:"key,omitempty"`
}

// ProjectEntry builds a project header entry.
func ProjectEntry(id string) DisplayEntry {
	return DisplayEntry{Kind: EntryProject, ID: id}
}

// SessionEntry builds a session reference entry.
func SessionEntry(key string) DisplayEntry {
	return DisplayEntry{Kind: EntrySession, Key: key}
}

// IsUngrouped reports whether the entry is the ungrouped sentinel header.
func (e DisplayEntry) IsUngrouped() bool {
	return e.Kind == EntryProject && e.ID == UngroupedID
}
