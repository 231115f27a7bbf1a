package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/ttydeck/ttydeck/errors"
)

// AgentSettings are the per-agent overrides from agents.toml. Each
// section is keyed by the agent kind reported in hook events.
type AgentSettings struct {
	// Enabled gates event ingestion for the agent. Nil means enabled.
	Enabled *bool `toml:"enabled"`
	// DisplayName replaces the raw agent kind in listings.
	DisplayName string `toml:"display_name"`
}

// AgentsConfig maps agent kinds to their overrides.
type AgentsConfig map[string]AgentSettings

// LoadAgents reads the per-agent overrides file. A missing file means
// no overrides.
func LoadAgents(path string) (AgentsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AgentsConfig{}, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read agents file").
			WithDetail("path", path)
	}

	var agents AgentsConfig
	if err := toml.Unmarshal(data, &agents); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse agents file").
			WithDetail("path", path)
	}
	if agents == nil {
		agents = AgentsConfig{}
	}
	return agents, nil
}

// Enabled reports whether events from the given agent kind should be
// ingested. Unlisted agents are enabled.
func (a AgentsConfig) Enabled(agent string) bool {
	settings, ok := a[agent]
	if !ok || settings.Enabled == nil {
		return true
	}
	return *settings.Enabled
}

// DisplayName returns the label to render for an agent kind, falling
// back to the kind itself.
func (a AgentsConfig) DisplayName(agent string) string {
	if settings, ok := a[agent]; ok && settings.DisplayName != "" {
		return settings.DisplayName
	}
	return agent
}
