package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/pkg/audit"
)

// NewAuditCmd prints the eviction audit trail.
func NewAuditCmd() *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the eviction audit trail",
		Long: `Prints every recorded eviction, oldest first. With --follow the command
keeps streaming new records as the cleanup loop appends them.

Examples:
  ttydeck audit
  ttydeck audit --follow
  ttydeck audit --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			log := audit.NewLog(cfg.AuditLogPath())

			if follow {
				ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer cancel()

				records, err := log.Follow(ctx, true)
				if err != nil {
					return err
				}
				for rec := range records {
					printAuditRecord(rec, opts.JSONOutput)
				}
				return nil
			}

			records, err := log.ReadAll()
			if err != nil {
				return err
			}
			if len(records) == 0 && !opts.JSONOutput {
				fmt.Println("No evictions recorded")
				return nil
			}
			for _, rec := range records {
				printAuditRecord(rec, opts.JSONOutput)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new records as they are appended")
	return cmd
}

func printAuditRecord(rec audit.Record, jsonOut bool) {
	if jsonOut {
		data, err := json.Marshal(rec)
		if err != nil {
			return
		}
		fmt.Println(string(data))
		return
	}

	line := fmt.Sprintf("%s  %-10s %-10s", rec.Time.Format(time.DateTime), shortID(rec.SessionID), rec.Reason)
	if rec.ElapsedMs > 0 {
		line += fmt.Sprintf("  idle %s", (time.Duration(rec.ElapsedMs) * time.Millisecond).Round(time.Second))
	}
	if rec.Cwd != "" {
		line += "  " + homeAbbrev(rec.Cwd)
	}
	fmt.Println(line)
}
