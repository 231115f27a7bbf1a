package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// NewProjectCmd groups the project management operations.
func NewProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage project groupings",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectRmCmd())
	cmd.AddCommand(newProjectMvCmd())

	return cmd
}

func newProjectCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			p, err := tr.CreateProject(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
			return tr.Flush()
		},
	}
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects and their ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			members := map[string]int{}
			for _, g := range tr.ListSessions() {
				members[g.ID] = len(g.Sessions)
			}
			projects := tr.Projects()
			if len(projects) == 0 {
				fmt.Println("No projects")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%-10s %-24s %d session(s)\n", p.ID, p.Name, members[p.ID])
			}
			if n := members[models.UngroupedID]; n > 0 {
				fmt.Printf("%-10s %-24s %d session(s)\n", "-", "(ungrouped)", n)
			}
			return tr.Flush()
		},
	}
}

func newProjectRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <project>",
		Short: "Delete a project",
		Long: `Deletes a project by id or name. Its sessions are not removed; they
return to the ungrouped group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			p, err := tr.ResolveProject(args[0])
			if err != nil {
				return err
			}
			if err := tr.DeleteProject(p.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted project %s\n", p.Name)
			return tr.Flush()
		},
	}
}

func newProjectMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <project> <up|down>",
		Short: "Move a project past its neighbor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			p, err := tr.ResolveProject(args[0])
			if err != nil {
				return err
			}
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}

			if !tr.ReorderProject(p.ID, dir) {
				fmt.Println("Nothing to move")
				return nil
			}
			return tr.Flush()
		},
	}
}
