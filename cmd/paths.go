package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/pkg/paths"
)

// PathsOutput represents the XDG-compliant paths used by ttydeck.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	DataDir    string `json:"data_dir"`
	StateDir   string `json:"state_dir"`
	CacheDir   string `json:"cache_dir"`
	RuntimeDir string `json:"runtime_dir"`
	Socket     string `json:"socket"`
	PidFile    string `json:"pid_file"`
	Store      string `json:"store"`
	AuditLog   string `json:"audit_log"`
	AgentsFile string `json:"agents_file"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by ttydeck",
		Long: `Print the XDG-compliant paths used by ttydeck.

This command outputs the paths in JSON format, making it easy to parse
from scripts and other tools. File locations reflect any overrides in
the active configuration.

The paths follow the XDG Base Directory Specification:
- config_dir: Configuration files (ttydeck.yml, agents.toml)
- data_dir: Persistent data (the session store)
- state_dir: Runtime state (pid file, audit log, daemon log)
- cache_dir: Temporary/regenerable data
- runtime_dir: Sockets`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				DataDir:    paths.DataDir(),
				StateDir:   paths.StateDir(),
				CacheDir:   paths.CacheDir(),
				RuntimeDir: paths.RuntimeDir(),
				Socket:     cfg.SocketPath(),
				PidFile:    cfg.PidFilePath(),
				Store:      cfg.StorePath(),
				AuditLog:   cfg.AuditLogPath(),
				AgentsFile: cfg.AgentsFilePath(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		},
	}

	return cmd
}
