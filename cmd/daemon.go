package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ttydeck/ttydeck/cli"
	"github.com/ttydeck/ttydeck/config"
	"github.com/ttydeck/ttydeck/internal/daemon/pidfile"
	"github.com/ttydeck/ttydeck/internal/daemon/server"
	"github.com/ttydeck/ttydeck/logging"
	"github.com/ttydeck/ttydeck/pkg/daemon"
	"github.com/ttydeck/ttydeck/pkg/paths"
)

// NewDaemonCmd returns the ttydeckd lifecycle command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the coordinator daemon",
		Long: `The coordinator daemon serializes store mutations from concurrent hook
processes and runs the periodic eviction loop. Hooks keep working without
it, falling back to direct store access.`,
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	var foreground bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the coordinator daemon",
		Long: `Start the coordinator daemon. By default the daemon detaches and logs to
a file under the state directory; pass --foreground to keep it attached
to the current terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if foreground {
				return runDaemon(cfg)
			}
			return spawnDaemon(cmd, cfg)
		},
	}
	cmd.Flags().BoolVar(&foreground, "foreground", false, "Run attached to the terminal instead of detaching")
	return cmd
}

// runDaemon is the daemon process body: pidfile lock, socket server,
// eviction loop, signal-driven shutdown.
func runDaemon(cfg *config.Config) error {
	logger := logging.NewLogger("ttydeckd")
	pidPath := cfg.PidFilePath()
	sockPath := cfg.SocketPath()

	if daemon.IsRunning(sockPath) {
		logger.WithField("socket", sockPath).Info("Daemon already running")
		return nil
	}

	if err := pidfile.Acquire(pidPath); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := pidfile.Release(pidPath); err != nil {
			logger.Errorf("Failed to release pidfile: %v", err)
		}
	}()

	tr := newTracker(cfg)
	srv := server.New(tr, logger)

	if err := srv.Start(sockPath); err != nil {
		return err
	}

	if cfg.CleanupEnabled() {
		tr.AcquireCleanup()
		defer tr.ReleaseCleanup()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	logger.WithField("pid", os.Getpid()).Info("Daemon started")
	<-stop
	logger.Info("Received stop signal")

	err := srv.Stop()
	if ferr := tr.Flush(); err == nil {
		err = ferr
	}
	return err
}

// spawnDaemon re-executes this binary detached in foreground mode, with
// output going to the daemon log file. The child skips detaching because
// it is started with --foreground.
func spawnDaemon(cmd *cobra.Command, cfg *config.Config) error {
	if daemon.IsRunning(cfg.SocketPath()) {
		fmt.Println("Daemon already running")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	childArgs := []string{"daemon", "start", "--foreground"}
	if opts := cli.GetOptions(cmd); opts.ConfigFile != "" {
		childArgs = append(childArgs, "--config", opts.ConfigFile)
	}

	logPath := filepath.Join(paths.StateDir(), "ttydeckd.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open daemon log: %w", err)
	}
	defer logFile.Close()

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	child := exec.Command(exe, childArgs...)
	child.Stdin = devNull
	child.Stdout = logFile
	child.Stderr = logFile
	// New session so the daemon survives this terminal closing.
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to spawn daemon: %w", err)
	}

	fmt.Printf("Daemon started (PID %d)\n", child.Process.Pid)
	fmt.Printf("Log: %s\n", logPath)
	return nil
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			running, pid, err := pidfile.IsRunning(cfg.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			// Send SIGTERM
			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Printf("Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			running, pid, err := pidfile.IsRunning(cfg.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if !running {
				fmt.Println("Stopped")
				os.Exit(1) // Return non-zero for stopped state (useful for scripts)
			}

			fmt.Printf("Running (PID: %d)\nSocket: %s\n", pid, cfg.SocketPath())
			if !daemon.IsRunning(cfg.SocketPath()) {
				fmt.Println("Warning: process is alive but the socket is not accepting connections")
			}
			return nil
		},
	}
}
