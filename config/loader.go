package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ttydeck/ttydeck/errors"
	"github.com/ttydeck/ttydeck/pkg/paths"
	"github.com/ttydeck/ttydeck/util/pathutil"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a ttydeck configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from a byte array: environment
// variables are expanded, the result is checked against the embedded
// schema, then defaulted and validated.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(&config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "schema validation failed")
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadDefault loads the global configuration. A missing config file is
// not an error; the defaults apply.
func LoadDefault() (*Config, error) {
	path, err := FindConfigFile()
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeConfigNotFound {
			config := &Config{}
			config.SetDefaults()
			return config, nil
		}
		return nil, err
	}
	return Load(path)
}

// FindConfigFile locates the global configuration file. A TTYDECK_CONFIG
// environment override is checked first, then ttydeck.yml / ttydeck.yaml
// under the config directory.
func FindConfigFile() (string, error) {
	if override := os.Getenv("TTYDECK_CONFIG"); override != "" {
		override = pathutil.Expand(override)
		if info, err := os.Stat(override); err == nil && !info.IsDir() {
			return override, nil
		}
		return "", errors.ConfigNotFound(override).WithDetail("source", "TTYDECK_CONFIG")
	}

	dir := paths.ConfigDir()
	for _, name := range []string{"ttydeck.yml", "ttydeck.yaml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", errors.ConfigNotFound(filepath.Join(dir, "ttydeck.yml"))
}

// expandEnvVars replaces ${VAR} with environment variable values.
// ${VAR:-default} supplies a fallback for unset variables.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
