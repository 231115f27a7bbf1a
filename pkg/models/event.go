package models

import (
	"fmt"
)

// EventName identifies which hook fired.
type EventName string

const (
	EventSessionStart     EventName = "SessionStart"
	EventUserPromptSubmit EventName = "UserPromptSubmit"
	EventPreToolUse       EventName = "PreToolUse"
	EventPostToolUse      EventName = "PostToolUse"
	EventNotification     EventName = "Notification"
	EventStop             EventName = "Stop"
	EventSessionEnd       EventName = "SessionEnd"
)

// NotificationPermissionPrompt is the notification subtype that parks a
// session in waiting_input; every other subtype leaves the status alone.
const NotificationPermissionPrompt = "permission_prompt"

// HookEvent is the payload a hook process (or log tailer) delivers for one
// agent lifecycle event.
type HookEvent struct {
	SessionID string    `json:"session_id"`
	EventName EventName `json:"hook_event_name"`
	// Cwd defaults to the reporting process's working directory when absent.
	Cwd   string    `json:"cwd,omitempty"`
	TTY   string    `json:"tty,omitempty"`
	Agent AgentKind `json:"agent,omitempty"`

	NotificationType string `json:"notification_type,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	ToolName         string `json:"tool_name,omitempty"`

	TmuxTarget string `json:"tmux_target,omitempty"`
	TmuxPaneID string `json:"tmux_pane_id,omitempty"`
}

// knownEvents is the set of hook event names the tracker understands.
var knownEvents = map[EventName]bool{
	EventSessionStart:     true,
	EventUserPromptSubmit: true,
	EventPreToolUse:       true,
	EventPostToolUse:      true,
	EventNotification:     true,
	EventStop:             true,
	EventSessionEnd:       true,
}

// Validate checks the event before any mutation is attempted. The returned
// error names the offending field.
func (e *HookEvent) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("invalid event: session_id is required")
	}
	if e.EventName == "" {
		return fmt.Errorf("invalid event: hook_event_name is required")
	}
	if !knownEvents[e.EventName] {
		return fmt.Errorf("invalid event: unknown hook_event_name %q", e.EventName)
	}
	if e.Agent != "" && e.Agent != AgentClaude && e.Agent != AgentCodex {
		return fmt.Errorf("invalid event: unknown agent %q", e.Agent)
	}
	return nil
}
