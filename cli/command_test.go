package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttydeck/ttydeck/testutil"
)

func TestNewStandardCommandFlags(t *testing.T) {
	cmd := NewStandardCommand("ttydeck", "test")

	for _, name := range []string{"verbose", "json", "config"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag %q", name)
		}
	}
	if !cmd.SilenceUsage || !cmd.SilenceErrors {
		t.Error("cobra's default error rendering is not silenced")
	}
}

func TestGetOptions(t *testing.T) {
	cmd := NewStandardCommand("ttydeck", "test")
	require.NoError(t, cmd.ParseFlags([]string{"--verbose", "--config", "/tmp/custom.yml"}))

	opts := GetOptions(cmd)
	assert.True(t, opts.Verbose)
	assert.False(t, opts.JSONOutput)
	assert.Equal(t, "/tmp/custom.yml", opts.ConfigFile)
}

func TestLoadConfigHonorsFlag(t *testing.T) {
	testutil.TempHome(t)
	path := testutil.WriteConfigFile(t, t.TempDir(), `version: "1.0"
cleanup:
  session_timeout: 45m
`)

	cmd := NewStandardCommand("ttydeck", "test")
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Minute, cfg.SessionTimeout())
}

func TestLoadConfigDefaultsWithoutFlag(t *testing.T) {
	testutil.TempHome(t)

	cmd := NewStandardCommand("ttydeck", "test")
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.SessionTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.WriteDebounce())
}
