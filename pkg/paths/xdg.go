// Package paths provides XDG-compliant path resolution for ttydeck.
//
// Resolution order:
// 1. TTYDECK_HOME (portable root) → $TTYDECK_HOME/{config,data,state,cache}
// 2. XDG env vars → $XDG_*_HOME/ttydeck
// 3. Platform defaults → ~/.config/ttydeck, ~/.local/share/ttydeck, etc.
package paths

import (
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if deckHome := os.Getenv("TTYDECK_HOME"); deckHome != "" {
		return filepath.Join(deckHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getDataHome returns the base data home directory.
func getDataHome() string {
	if deckHome := os.Getenv("TTYDECK_HOME"); deckHome != "" {
		return filepath.Join(deckHome, "data")
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if deckHome := os.Getenv("TTYDECK_HOME"); deckHome != "" {
		return filepath.Join(deckHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// getCacheHome returns the base cache home directory.
func getCacheHome() string {
	if deckHome := os.Getenv("TTYDECK_HOME"); deckHome != "" {
		return filepath.Join(deckHome, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the ttydeck configuration directory.
// Used for config files like ttydeck.yml and agents.toml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "ttydeck")
}

// DataDir returns the ttydeck data directory.
// Used for the session store and other durable data.
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "ttydeck")
}

// StateDir returns the ttydeck state directory.
// Used for runtime state, logs, the pid file and the audit log.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "ttydeck")
}

// CacheDir returns the ttydeck cache directory.
// Used for temporary/regenerable data.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "ttydeck")
}

// RuntimeDir returns the ttydeck runtime directory for sockets and pipes.
// Uses XDG_RUNTIME_DIR when available (Linux), falls back to StateDir (macOS).
func RuntimeDir() string {
	if deckHome := os.Getenv("TTYDECK_HOME"); deckHome != "" {
		return filepath.Join(deckHome, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "ttydeck")
	}
	// Fallback: use state dir for socket on macOS/systems without XDG_RUNTIME_DIR
	return StateDir()
}

// SocketPath returns the path to the coordinator daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "ttydeckd.sock")
}

// PidFilePath returns the path to the coordinator daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "ttydeckd.pid")
}

// StorePath returns the path to the persisted session store file.
func StorePath() string {
	return filepath.Join(DataDir(), "sessions.json")
}

// AuditLogPath returns the path to the eviction audit log.
func AuditLogPath() string {
	return filepath.Join(StateDir(), "cleanup-audit.jsonl")
}

// AgentsFilePath returns the path to the per-agent overrides file.
func AgentsFilePath() string {
	return filepath.Join(ConfigDir(), "agents.toml")
}

// EnsureDirs creates all ttydeck directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		DataDir(),
		StateDir(),
		CacheDir(),
		RuntimeDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
