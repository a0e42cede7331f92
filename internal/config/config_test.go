package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Tunnelblick", cfg.App)
	assert.Equal(t, "Tunnelblick: Login Required", cfg.LoginWindowTitle)
	assert.Equal(t, 30, cfg.CheckIntervalSeconds)
	assert.Equal(t, "8.8.8.8", cfg.PingHost)
	assert.Equal(t, 30, cfg.ConnectPolls)
	assert.Equal(t, 10, cfg.DisconnectPolls)
	assert.Equal(t, 15, cfg.DialogAttempts)

	require.NoError(t, cfg.Validate())
}

func TestConfig_DurationHelpers(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30*time.Second, cfg.CheckInterval())
	assert.Equal(t, 5*time.Second, cfg.PingTimeout())
	assert.Equal(t, 700*time.Millisecond, cfg.DialogDelay())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.App = "Tunnelblick Beta"
	cfg.CheckIntervalSeconds = 60

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"check_interval_seconds": 120}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.CheckIntervalSeconds)
	assert.Equal(t, "Tunnelblick", cfg.App, "unset fields keep defaults")
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"check_interval_seconds": -1}`), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check interval")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "empty app", mutate: func(c *Config) { c.App = "" }},
		{name: "zero check interval", mutate: func(c *Config) { c.CheckIntervalSeconds = 0 }},
		{name: "zero ping timeout", mutate: func(c *Config) { c.PingTimeoutSeconds = 0 }},
		{name: "zero connect polls", mutate: func(c *Config) { c.ConnectPolls = 0 }},
		{name: "zero disconnect polls", mutate: func(c *Config) { c.DisconnectPolls = 0 }},
		{name: "zero dialog attempts", mutate: func(c *Config) { c.DialogAttempts = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSave_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.App = ""

	require.Error(t, Save(path, cfg))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "invalid config must not be written")
}

func TestPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-test/tunnelctl/config.json", path)
}
