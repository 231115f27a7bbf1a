package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the JSON Schema for the core ttydeck
// configuration. It reflects the Config struct minus the Extensions
// field; extension sections validate themselves.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Extension keys live alongside the core ones, so unknown
		// top-level properties must stay legal.
		AllowAdditionalProperties: true,
		// Expand struct references instead of using $ref for a cleaner schema.
		ExpandedStruct: true,
		// Use YAML field names for property names.
		FieldNameTag: "yaml",
	}

	type BaseConfig struct {
		Version    string         `yaml:"version,omitempty" jsonschema:"description=Configuration version (e.g. 1.0)"`
		Storage    *StorageConfig `yaml:"storage,omitempty" jsonschema:"description=Session store persistence settings"`
		Daemon     *DaemonConfig  `yaml:"daemon,omitempty" jsonschema:"description=Coordinator daemon settings"`
		Cleanup    *CleanupConfig `yaml:"cleanup,omitempty" jsonschema:"description=Session eviction settings"`
		TTY        *TTYConfig     `yaml:"tty,omitempty" jsonschema:"description=Terminal liveness cache settings"`
		AgentsFile string         `yaml:"agents_file,omitempty" jsonschema:"description=Override for the per-agent overrides file (agents.toml)"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "ttydeck Configuration"
	schema.Description = "Schema for ttydeck.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"
	// No field is mandatory; an empty config is a valid config.
	schema.Required = nil

	return json.MarshalIndent(schema, "", "  ")
}
