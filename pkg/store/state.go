package store

import (
	"time"

	"github.com/ttydeck/ttydeck/pkg/models"
)

// NextStatus maps an incoming event and the previous status to the new
// session status. It is a pure function of its arguments.
//
// SessionStart, UserPromptSubmit and PreToolUse always yield running, even
// when the session was previously stopped. A permission_prompt notification
// parks the session in waiting_input; any other notification leaves the
// status alone, as does PostToolUse. Stop yields stopped. SessionEnd is
// terminal and handled by the caller (the session is removed, so there is
// no next status to compute).
func NextStatus(event models.EventName, notificationType string, prev models.Status) models.Status {
	switch event {
	case models.EventSessionStart, models.EventUserPromptSubmit, models.EventPreToolUse:
		return models.StatusRunning
	case models.EventNotification:
		if notificationType == models.NotificationPermissionPrompt {
			return models.StatusWaitingInput
		}
		return prev
	case models.EventStop:
		return models.StatusStopped
	case models.EventPostToolUse:
		return prev
	}
	return prev
}

// ApplyEvent validates the event and folds it into the store: creating the
// session on first sight, advancing its status, applying the event's field
// side-effects, and purging a stale session that previously occupied the
// same terminal.
func (s *Store) ApplyEvent(ev *models.HookEvent, now time.Time) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	s.Normalize()

	if ev.EventName == models.EventSessionEnd {
		s.RemoveSession(ev.SessionID)
		s.UpdatedAt = now
		return nil
	}

	sess := s.Sessions[ev.SessionID]

	// A new session id arriving on a terminal that still hosts a different
	// session means that session is stale (the agent restarted on the same
	// terminal). Purge it, and carry its project assignment over so the
	// grouping survives the restart.
	inherited := ""
	if sess == nil && ev.TTY != "" {
		for key, other := range s.Sessions {
			if key == ev.SessionID || other.TTY != ev.TTY {
				continue
			}
			if id, ok := s.ProjectOf(key); ok && inherited == "" {
				inherited = id
			}
			s.RemoveSession(key)
		}
	}

	if sess == nil {
		sess = &models.Session{
			SessionID:  ev.SessionID,
			Cwd:        ev.Cwd,
			InitialCwd: ev.Cwd,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.Sessions[ev.SessionID] = sess
	}
	s.AddSession(ev.SessionID)
	if inherited != "" {
		s.AssignToProject(ev.SessionID, inherited)
	}

	if ev.Cwd != "" {
		sess.Cwd = ev.Cwd
		if sess.InitialCwd == "" {
			sess.InitialCwd = ev.Cwd
		}
	}
	if ev.TTY != "" {
		sess.TTY = ev.TTY
	}
	if ev.Agent != "" {
		sess.Agent = ev.Agent
	}
	if ev.TmuxTarget != "" {
		sess.TmuxTarget = ev.TmuxTarget
	}
	if ev.TmuxPaneID != "" {
		sess.TmuxPaneID = ev.TmuxPaneID
	}

	sess.Status = NextStatus(ev.EventName, ev.NotificationType, sess.Status)

	switch ev.EventName {
	case models.EventSessionStart:
		sess.CurrentTool = ""
		sess.NotificationType = ""
	case models.EventUserPromptSubmit:
		sess.LastPrompt = ev.Prompt
		sess.NotificationType = ""
	case models.EventPreToolUse:
		sess.CurrentTool = ev.ToolName
	case models.EventPostToolUse:
		sess.CurrentTool = ""
	case models.EventNotification:
		sess.NotificationType = ev.NotificationType
	case models.EventStop:
		sess.CurrentTool = ""
		sess.NotificationType = ""
	}

	sess.Touch(now)
	s.UpdatedAt = now
	return nil
}
