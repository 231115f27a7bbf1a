package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
)

// NewCleanupCmd runs one eviction pass in this process.
func NewCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Run one eviction pass now",
		Long: `Scans the store once and evicts sessions whose terminal is gone or whose
idle time exceeds the configured timeout. The daemon runs the same pass
periodically; this command exists for setups without a daemon and for
forcing a scan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			tr := newTracker(cfg)

			removed := tr.RunCleanupOnce()
			if len(removed) == 0 {
				fmt.Println("Nothing to evict")
				return nil
			}
			for _, r := range removed {
				fmt.Printf("Evicted %s (%s)\n", shortID(r.SessionID), r.Reason)
			}
			return tr.Flush()
		},
	}
}
