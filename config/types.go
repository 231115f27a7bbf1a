package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/ttydeck/ttydeck/pkg/paths"
	"github.com/ttydeck/ttydeck/util/pathutil"
)

//go:generate go run ../tools/config-schema-generator/

// StorageConfig controls where and how the session store is persisted.
type StorageConfig struct {
	StorePath     string `yaml:"store_path,omitempty" json:"store_path,omitempty" jsonschema:"description=Override for the session store file path"`
	WriteDebounce string `yaml:"write_debounce,omitempty" json:"write_debounce,omitempty" jsonschema:"description=Debounce window for store writes (default: 250ms)"`
}

// DaemonConfig controls the coordinator daemon (ttydeckd).
type DaemonConfig struct {
	SocketPath string `yaml:"socket_path,omitempty" json:"socket_path,omitempty" jsonschema:"description=Override for the daemon unix socket path"`
	PidFile    string `yaml:"pid_file,omitempty" json:"pid_file,omitempty" jsonschema:"description=Override for the daemon pid file path"`
}

// CleanupConfig controls the session eviction engine.
type CleanupConfig struct {
	Enabled        *bool  `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Run the periodic cleanup loop (default: true)"`
	SessionTimeout string `yaml:"session_timeout,omitempty" json:"session_timeout,omitempty" jsonschema:"description=Idle time before a session is evicted; 0 disables the idle check (default: 0)"`
	Interval       string `yaml:"interval,omitempty" json:"interval,omitempty" jsonschema:"description=How often the cleanup loop runs (default: 30s)"`
	AuditLog       *bool  `yaml:"audit_log,omitempty" json:"audit_log,omitempty" jsonschema:"description=Record evictions to the audit log (default: true)"`
	AuditLogPath   string `yaml:"audit_log_path,omitempty" json:"audit_log_path,omitempty" jsonschema:"description=Override for the eviction audit log path"`
}

// TTYConfig controls the terminal liveness cache.
type TTYConfig struct {
	CacheTTL  string `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty" jsonschema:"description=How long a liveness probe result is reused (default: 5s)"`
	CacheSize int    `yaml:"cache_size,omitempty" json:"cache_size,omitempty" jsonschema:"description=Maximum cached tty entries (default: 256),minimum=0"`
}

// Config represents the ttydeck.yml configuration.
type Config struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. 1.0)"`

	Storage *StorageConfig `yaml:"storage,omitempty" json:"storage,omitempty" jsonschema:"description=Session store persistence settings"`
	Daemon  *DaemonConfig  `yaml:"daemon,omitempty" json:"daemon,omitempty" jsonschema:"description=Coordinator daemon settings"`
	Cleanup *CleanupConfig `yaml:"cleanup,omitempty" json:"cleanup,omitempty" jsonschema:"description=Session eviction settings"`
	TTY     *TTYConfig     `yaml:"tty,omitempty" json:"tty,omitempty" jsonschema:"description=Terminal liveness cache settings"`

	AgentsFile string `yaml:"agents_file,omitempty" json:"agents_file,omitempty" jsonschema:"description=Override for the per-agent overrides file (agents.toml)"`

	// Extensions captures all other top-level keys for extensibility.
	// Tools such as the logging layer read their sections from here.
	Extensions map[string]interface{} `yaml:",inline" json:"-" jsonschema:"-"`
}

// SetDefaults fills in nil sections so accessors never have to
// nil-check.
func (c *Config) SetDefaults() {
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Daemon == nil {
		c.Daemon = &DaemonConfig{}
	}
	if c.Cleanup == nil {
		c.Cleanup = &CleanupConfig{}
	}
	if c.TTY == nil {
		c.TTY = &TTYConfig{}
	}
}

// StorePath resolves the session store file location. Overrides may use
// ~ and environment variables.
func (c *Config) StorePath() string {
	if c.Storage != nil && c.Storage.StorePath != "" {
		return pathutil.Expand(c.Storage.StorePath)
	}
	return paths.StorePath()
}

// SocketPath resolves the daemon socket location.
func (c *Config) SocketPath() string {
	if c.Daemon != nil && c.Daemon.SocketPath != "" {
		return pathutil.Expand(c.Daemon.SocketPath)
	}
	return paths.SocketPath()
}

// PidFilePath resolves the daemon pid file location.
func (c *Config) PidFilePath() string {
	if c.Daemon != nil && c.Daemon.PidFile != "" {
		return pathutil.Expand(c.Daemon.PidFile)
	}
	return paths.PidFilePath()
}

// AuditLogPath resolves the eviction audit log location.
func (c *Config) AuditLogPath() string {
	if c.Cleanup != nil && c.Cleanup.AuditLogPath != "" {
		return pathutil.Expand(c.Cleanup.AuditLogPath)
	}
	return paths.AuditLogPath()
}

// AgentsFilePath resolves the per-agent overrides file location.
func (c *Config) AgentsFilePath() string {
	if c.AgentsFile != "" {
		return pathutil.Expand(c.AgentsFile)
	}
	return paths.AgentsFilePath()
}

// WriteDebounce returns the store write debounce window.
func (c *Config) WriteDebounce() time.Duration {
	raw := ""
	if c.Storage != nil {
		raw = c.Storage.WriteDebounce
	}
	return durationOr(raw, 250*time.Millisecond)
}

// SessionTimeout returns the idle eviction budget. Zero disables the
// idle check.
func (c *Config) SessionTimeout() time.Duration {
	raw := ""
	if c.Cleanup != nil {
		raw = c.Cleanup.SessionTimeout
	}
	return durationOr(raw, 0)
}

// CleanupInterval returns the eviction loop period.
func (c *Config) CleanupInterval() time.Duration {
	raw := ""
	if c.Cleanup != nil {
		raw = c.Cleanup.Interval
	}
	return durationOr(raw, 30*time.Second)
}

// CleanupEnabled reports whether the periodic cleanup loop should run.
func (c *Config) CleanupEnabled() bool {
	if c.Cleanup == nil || c.Cleanup.Enabled == nil {
		return true
	}
	return *c.Cleanup.Enabled
}

// AuditEnabled reports whether evictions are written to the audit log.
func (c *Config) AuditEnabled() bool {
	if c.Cleanup == nil || c.Cleanup.AuditLog == nil {
		return true
	}
	return *c.Cleanup.AuditLog
}

// TTYCacheTTL returns how long a liveness probe is trusted.
func (c *Config) TTYCacheTTL() time.Duration {
	raw := ""
	if c.TTY != nil {
		raw = c.TTY.CacheTTL
	}
	return durationOr(raw, 5*time.Second)
}

// TTYCacheSize returns the liveness cache bound.
func (c *Config) TTYCacheSize() int {
	if c.TTY == nil || c.TTY.CacheSize <= 0 {
		return 256
	}
	return c.TTY.CacheSize
}

// durationOr parses a duration string, falling back when it is empty.
// Validation has already rejected unparsable values.
func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

// UnmarshalExtension decodes a custom top-level section of the loaded
// ttydeck.yml into the provided target struct. The target must be a
// pointer. This gives tools a type-safe way to read their own sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// Absent keys leave the target zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
