package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/daemon"
	"github.com/ttydeck/ttydeck/pkg/models"
)

// NewHookCmd returns the command agents invoke from their hook settings.
func NewHookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Ingest one agent lifecycle event from stdin",
		Long: `Reads a single JSON hook event from stdin and folds it into the session
store, through the daemon when one is listening or directly otherwise.

The command always exits zero: a misconfigured or broken tracker must
never disturb the agent that invoked it. Failures are logged instead.

Examples:
  # Claude Code settings.json wires its hooks to this command
  echo '{"session_id":"abc","hook_event_name":"SessionStart"}' | ttydeck hook`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("hook")
			if err := runHook(cmd, os.Stdin); err != nil {
				logger.WithError(err).Warn("Event not applied")
			}
			return nil
		},
	}
}

func runHook(cmd *cobra.Command, in io.Reader) error {
	cfg, err := cli.LoadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read event from stdin: %w", err)
	}
	var ev models.HookEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return errors.EventInvalid(fmt.Errorf("malformed event JSON: %w", err))
	}

	agents, err := config.LoadAgents(cfg.AgentsFilePath())
	if err != nil {
		// Unreadable overrides never block ingestion.
		logging.NewLogger("hook").WithError(err).Warn("Ignoring agents file")
		agents = config.AgentsConfig{}
	}
	if ev.Agent != "" && !agents.Enabled(string(ev.Agent)) {
		return nil
	}

	if ev.TTY == "" {
		ev.TTY = controllingTTY()
	}

	client := daemon.NewWithFallback(cfg.SocketPath(), newTracker(cfg))
	defer client.Close()
	return client.ApplyEvent(&ev)
}

// controllingTTY resolves the terminal device this hook runs on. Hooks
// receive their payload on a stdin pipe, so stderr is usually the stream
// still attached to the terminal. Returns empty when no stream is a
// terminal or the device path cannot be resolved; such sessions are
// tracked as background and never tty-evicted.
func controllingTTY() string {
	for _, f := range []*os.File{os.Stderr, os.Stdout, os.Stdin} {
		if !isatty.IsTerminal(f.Fd()) {
			continue
		}
		// procfs is the accurate answer on Linux; $TTY covers shells
		// that export it on systems without /proc.
		if path, err := os.Readlink(fmt.Sprintf("/proc/self/fd/%d", f.Fd())); err == nil {
			return path
		}
		if path := os.Getenv("TTY"); path != "" {
			return path
		}
	}
	return ""
}
