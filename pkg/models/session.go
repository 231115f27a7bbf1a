package models

import (
	"time"
)

// Status is the lifecycle state of a tracked session.
type Status string

const (
	StatusRunning      Status = "running"
	StatusWaitingInput Status = "waiting_input"
	StatusStopped      Status = "stopped"
)

// AgentKind identifies which coding agent produced a session's events.
type AgentKind string

const (
	AgentClaude AgentKind = "claude"
	AgentCodex  AgentKind = "codex"
)

// Session represents one tracked coding-agent terminal interaction,
// keyed by its session ID.
type Session struct {
	SessionID  string    `json:"session_id"`
	Cwd        string    `json:"cwd"`
	InitialCwd string    `json:"initial_cwd,omitempty"`
	// Controlling terminal device path. Empty means unknown/background;
	// such sessions are treated as always alive by the liveness check.
	TTY       string    `json:"tty,omitempty"`
	Agent     AgentKind `json:"agent,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LastPrompt       string `json:"last_prompt,omitempty"`
	CurrentTool      string `json:"current_tool,omitempty"`
	NotificationType string `json:"notification_type,omitempty"`

	// LastMessage caches the most recent assistant output so the monitor
	// can render it without re-reading transcript files every poll.
	LastMessage string `json:"lastMessage,omitempty"`

	// Summary fields are written by an external summarizer, never by the
	// tracker itself.
	Summary               string `json:"summary,omitempty"`
	SummaryTranscriptSize int64  `json:"summary_transcript_size,omitempty"`

	// Set for sessions the agent launched inside tmux.
	TmuxTarget string `json:"tmux_target,omitempty"`
	TmuxPaneID string `json:"tmux_pane_id,omitempty"`
}

// Touch advances UpdatedAt, keeping it monotonically non-decreasing.
func (s *Session) Touch(now time.Time) {
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

// Project is a user-defined grouping label for sessions.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
