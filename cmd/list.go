package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/pkg/models"
	"github.com/ttydeck/ttydeck/pkg/tracker"
	"github.com/ttydeck/ttydeck/pkg/watch"
)

var (
	listHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#268bd2"))
	listRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2aa198"))
	listWaitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#cb4b16"))
	listStoppedStyle = lipgloss.NewStyle().Faint(true)
	listMutedStyle   = lipgloss.NewStyle().Faint(true)
)

// groupOutput is the JSON shape of one rendered project section.
type groupOutput struct {
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name,omitempty"`
	Sessions []*models.Session `json:"sessions"`
}

// NewListCmd returns the grouped session listing command.
func NewListCmd() *cobra.Command {
	var watchMode bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked sessions grouped by project",
		Long: `Lists every tracked session under its project header, in display order.

Examples:
  # One shot listing
  ttydeck list

  # Machine readable
  ttydeck list --json

  # Keep the listing current as hooks report events
  ttydeck list --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			agents, err := config.LoadAgents(cfg.AgentsFilePath())
			if err != nil {
				agents = config.AgentsConfig{}
			}
			tr := newTracker(cfg)

			if watchMode {
				return watchList(cfg, tr, agents, opts.JSONOutput)
			}
			if err := printList(cmd.OutOrStdout(), tr, agents, opts.JSONOutput); err != nil {
				return err
			}
			return tr.Flush()
		},
	}
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-render whenever the store file changes")
	return cmd
}

func printList(w io.Writer, tr *tracker.Tracker, agents config.AgentsConfig, jsonOut bool) error {
	groups := tr.ListSessions()

	if jsonOut {
		out := make([]groupOutput, 0, len(groups))
		for _, g := range groups {
			sessions := g.Sessions
			if sessions == nil {
				sessions = []*models.Session{}
			}
			out = append(out, groupOutput{ID: g.ID, Name: g.Name, Sessions: sessions})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	total := 0
	for _, g := range groups {
		total += len(g.Sessions)
	}
	if total == 0 {
		fmt.Fprintln(w, "No sessions tracked")
		return nil
	}

	now := time.Now()
	for _, g := range groups {
		if g.ID == models.UngroupedID && len(g.Sessions) == 0 {
			continue
		}
		name := g.Name
		if g.ID == models.UngroupedID {
			name = "Ungrouped"
		}
		fmt.Fprintln(w, listHeaderStyle.Render(name))
		for _, sess := range g.Sessions {
			fmt.Fprintln(w, renderSession(sess, agents, now))
		}
	}
	return nil
}

// renderSession formats one session line: status glyph, short id, agent,
// status, idle time, directory, and current activity.
func renderSession(sess *models.Session, agents config.AgentsConfig, now time.Time) string {
	glyph, style := statusGlyph(sess.Status)

	agent := agents.DisplayName(string(sess.Agent))
	if agent == "" {
		agent = "-"
	}

	fields := []string{
		style.Render(glyph),
		shortID(sess.SessionID),
		agent,
		style.Render(string(sess.Status)),
		humanSince(sess.UpdatedAt, now),
		homeAbbrev(sess.Cwd),
	}
	if act := activity(sess); act != "" {
		fields = append(fields, listMutedStyle.Render(act))
	}
	return "  " + strings.Join(fields, "  ")
}

func statusGlyph(status models.Status) (string, lipgloss.Style) {
	switch status {
	case models.StatusRunning:
		return "●", listRunningStyle
	case models.StatusWaitingInput:
		return "◐", listWaitingStyle
	default:
		return "○", listStoppedStyle
	}
}

// activity picks the most informative thing the session is doing right
// now: an in-flight tool, a pending notification, or the last prompt.
func activity(sess *models.Session) string {
	switch {
	case sess.CurrentTool != "":
		return truncate(sess.CurrentTool, 24)
	case sess.Status == models.StatusWaitingInput && sess.NotificationType != "":
		return truncate(sess.NotificationType, 24)
	case sess.LastPrompt != "":
		return truncate(sess.LastPrompt, 40)
	}
	return ""
}

func shortID(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

func homeAbbrev(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" || path == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "~/" + rel
	}
	return path
}

func humanSince(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// watchList re-renders the listing whenever the store file changes on
// disk, until interrupted.
func watchList(cfg *config.Config, tr *tracker.Tracker, agents config.AgentsConfig, jsonOut bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clearScreen := isatty.IsTerminal(os.Stdout.Fd()) && !jsonOut

	render := func() {
		// Another process wrote the file; drop our snapshot first.
		tr.Reset()
		if clearScreen {
			fmt.Print("\033[2J\033[H")
		}
		if err := printList(os.Stdout, tr, agents, jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		}
	}
	render()

	w, err := watch.NewStoreWatcher(cfg.StorePath(), 0, render)
	if err != nil {
		return err
	}
	defer w.Close()

	w.Start(ctx)
	return nil
}
