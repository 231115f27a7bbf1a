package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/pkg/store"
)

// NewSessionCmd groups the per-session operations.
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Operate on individual sessions",
	}

	cmd.AddCommand(newSessionRmCmd())
	cmd.AddCommand(newSessionAssignCmd())
	cmd.AddCommand(newSessionMvCmd())

	return cmd
}

func newSessionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <session-id>",
		Short: "Remove a session from tracking",
		Long: `Removes a session from the store. The session id may be abbreviated to
any unique prefix. The agent process itself is not touched; if it emits
another event the session reappears.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			sess, err := tr.ResolveSession(args[0])
			if err != nil {
				return err
			}
			if err := tr.RemoveSession(sess.SessionID); err != nil {
				return err
			}
			fmt.Printf("Removed session %s\n", sess.SessionID)
			return tr.Flush()
		},
	}
}

func newSessionAssignCmd() *cobra.Command {
	var ungroup bool
	cmd := &cobra.Command{
		Use:   "assign <session-id> [project]",
		Short: "Assign a session to a project",
		Long: `Moves a session under a project header. The project may be named by id
or by name; --ungroup moves the session back to the ungrouped group.

Examples:
  ttydeck session assign 4f2a api-rewrite
  ttydeck session assign 4f2a --ungroup`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			sess, err := tr.ResolveSession(args[0])
			if err != nil {
				return err
			}

			projectID := ""
			target := "ungrouped"
			if len(args) == 2 {
				p, err := tr.ResolveProject(args[1])
				if err != nil {
					return err
				}
				projectID = p.ID
				target = p.Name
			} else if !ungroup {
				return errors.New(errors.ErrCodeInvalidInput, "name a project or pass --ungroup")
			}

			if err := tr.AssignToProject(sess.SessionID, projectID); err != nil {
				return err
			}
			fmt.Printf("Assigned %s to %s\n", shortID(sess.SessionID), target)
			return tr.Flush()
		},
	}
	cmd.Flags().BoolVar(&ungroup, "ungroup", false, "Move the session back to the ungrouped group")
	return cmd
}

func newSessionMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <session-id> <up|down>",
		Short: "Move a session within its display order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			sess, err := tr.ResolveSession(args[0])
			if err != nil {
				return err
			}
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}

			if !tr.MoveSession(sess.SessionID, dir) {
				fmt.Println("Nothing to move")
				return nil
			}
			return tr.Flush()
		},
	}
}

// parseDirection maps the CLI argument onto a store direction.
func parseDirection(s string) (store.Direction, error) {
	switch s {
	case "up":
		return store.Up, nil
	case "down":
		return store.Down, nil
	}
	return "", errors.Newf(errors.ErrCodeInvalidInput, "direction must be up or down, got %q", s)
}
