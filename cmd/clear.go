package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/pkg/daemon"
)

// NewClearCmd groups the bulk removal operations. Clears go through the
// daemon when one is running so its in-memory snapshot resets too.
func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Bulk-remove tracked state",
	}

	cmd.AddCommand(newClearSubCmd(
		"sessions",
		"Remove every tracked session, keeping projects",
		func(c daemon.Client) error { return c.ClearSessions() },
	))
	cmd.AddCommand(newClearSubCmd(
		"projects",
		"Remove every project grouping, keeping sessions",
		func(c daemon.Client) error { return c.ClearProjects() },
	))
	cmd.AddCommand(newClearSubCmd(
		"all",
		"Reset the store to empty",
		func(c daemon.Client) error { return c.ClearAll() },
	))

	return cmd
}

func newClearSubCmd(use, short string, op func(daemon.Client) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			client := daemon.NewWithFallback(cfg.SocketPath(), newTracker(cfg))
			if err := op(client); err != nil {
				client.Close()
				return err
			}
			// Close flushes any direct writes the fallback performed.
			if err := client.Close(); err != nil {
				return err
			}
			fmt.Printf("Cleared %s\n", use)
			return nil
		},
	}
}
