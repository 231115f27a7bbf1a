// Package cmd implements the ttydeck command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/pkg/audit"
	"github.com/ttydeck/ttydeck/pkg/profiling"
	"github.com/ttydeck/ttydeck/pkg/storage"
	"github.com/ttydeck/ttydeck/pkg/tracker"
	"github.com/ttydeck/ttydeck/pkg/tty"
	"github.com/ttydeck/ttydeck/version"
)

// NewRootCmd assembles the full ttydeck command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"ttydeck",
		"Track live coding-agent terminal sessions",
	)
	rootCmd.Long = `ttydeck tracks the coding-agent sessions running in your terminals.

Agents report lifecycle events through 'ttydeck hook'; the daemon
serializes them into one session store, evicts sessions whose terminal
disappeared, and 'ttydeck list' renders the result grouped by project.

Examples:
  # Start the coordinator daemon
  ttydeck daemon start

  # See what is running right now
  ttydeck list

  # Group two sessions under a project
  ttydeck project create api-rewrite
  ttydeck session assign 4f2a api-rewrite`

	info := version.GetInfo()
	rootCmd.Version = info.Version
	cli.SetVersionTemplate(rootCmd, info)

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(rootCmd)
	rootCmd.PersistentPreRunE = profiler.PreRun
	rootCmd.PersistentPostRun = profiler.PostRun

	rootCmd.AddCommand(NewDaemonCmd())
	rootCmd.AddCommand(NewHookCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewSessionCmd())
	rootCmd.AddCommand(NewProjectCmd())
	rootCmd.AddCommand(NewClearCmd())
	rootCmd.AddCommand(NewCleanupCmd())
	rootCmd.AddCommand(NewAuditCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewPathsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	return rootCmd
}

// newTracker wires a tracker and its collaborators from the resolved
// configuration. Every command that touches the store builds exactly one.
func newTracker(cfg *config.Config) *tracker.Tracker {
	cache := storage.NewCache(cfg.StorePath(), cfg.WriteDebounce())
	checker := tty.NewChecker(cfg.TTYCacheTTL(), cfg.TTYCacheSize())

	var auditLog *audit.Log
	if cfg.AuditEnabled() {
		auditLog = audit.NewLog(cfg.AuditLogPath())
	}

	return tracker.New(cache, checker, auditLog, tracker.Options{
		SocketPath:      cfg.SocketPath(),
		SessionTimeout:  cfg.SessionTimeout(),
		CleanupInterval: cfg.CleanupInterval(),
	})
}
