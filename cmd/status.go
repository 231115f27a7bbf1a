package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/internal/daemon/pidfile"
	"github.com/ttydeck/ttydeck/pkg/models"
	"github.com/ttydeck/ttydeck/pkg/tracker"
)

// statusOutput is the JSON shape of the tracker status summary.
type statusOutput struct {
	DaemonRunning bool   `json:"daemon_running"`
	DaemonPID     int    `json:"daemon_pid,omitempty"`
	Socket        string `json:"socket"`
	Store         string `json:"store"`
	Sessions      int    `json:"sessions"`
	Running       int    `json:"running"`
	WaitingInput  int    `json:"waiting_input"`
	Stopped       int    `json:"stopped"`
	Projects      int    `json:"projects"`
}

// NewStatusCmd summarizes the tracker state and daemon reachability.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracker and daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			out := collectStatus(cfg, newTracker(cfg))

			if opts.JSONOutput {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if out.DaemonRunning {
				fmt.Printf("Daemon:   running (PID %d)\n", out.DaemonPID)
			} else {
				fmt.Println("Daemon:   not running (hooks fall back to direct store access)")
			}
			fmt.Printf("Socket:   %s\n", out.Socket)
			fmt.Printf("Store:    %s\n", out.Store)
			fmt.Printf("Sessions: %d (%d running, %d waiting, %d stopped)\n",
				out.Sessions, out.Running, out.WaitingInput, out.Stopped)
			fmt.Printf("Projects: %d\n", out.Projects)
			return nil
		},
	}
}

func collectStatus(cfg *config.Config, tr *tracker.Tracker) statusOutput {
	out := statusOutput{
		DaemonRunning: tr.IsDaemonReachable(),
		Socket:        cfg.SocketPath(),
		Store:         cfg.StorePath(),
		Projects:      len(tr.Projects()),
	}
	if running, pid, err := pidfile.IsRunning(cfg.PidFilePath()); err == nil && running {
		out.DaemonPID = pid
	}
	for _, sess := range tr.Sessions() {
		out.Sessions++
		switch sess.Status {
		case models.StatusRunning:
			out.Running++
		case models.StatusWaitingInput:
			out.WaitingInput++
		case models.StatusStopped:
			out.Stopped++
		}
	}
	return out
}
