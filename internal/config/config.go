// Package config manages application-level configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application identifier used for XDG paths.
	AppName = "tunnelctl"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.json"
)

// Config represents the application configuration. Zero values are
// replaced with defaults at load time.
type Config struct {
	// App is the name Tunnelblick registers under with the OS.
	App string `json:"app"`
	// LoginWindowTitle is the title of the credential dialog window.
	LoginWindowTitle string `json:"login_window_title"`
	// CheckIntervalSeconds is the monitor's default poll interval.
	CheckIntervalSeconds int `json:"check_interval_seconds"`
	// PingHost is the address probed for network reachability.
	PingHost string `json:"ping_host"`
	// PingTimeoutSeconds bounds a single reachability probe.
	PingTimeoutSeconds int `json:"ping_timeout_seconds"`
	// ConnectPolls is the status poll budget when connecting.
	ConnectPolls int `json:"connect_polls"`
	// DisconnectPolls is the status poll budget when disconnecting.
	DisconnectPolls int `json:"disconnect_polls"`
	// DialogAttempts is how many times credential entry retries.
	DialogAttempts int `json:"dialog_attempts"`
	// DialogDelayMillis is the pause between credential entry attempts.
	DialogDelayMillis int `json:"dialog_delay_ms"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App:                  "Tunnelblick",
		LoginWindowTitle:     "Tunnelblick: Login Required",
		CheckIntervalSeconds: 30,
		PingHost:             "8.8.8.8",
		PingTimeoutSeconds:   5,
		ConnectPolls:         30,
		DisconnectPolls:      10,
		DialogAttempts:       15,
		DialogDelayMillis:    700,
	}
}

// CheckInterval returns the monitor poll interval as a duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// PingTimeout returns the reachability probe timeout as a duration.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.PingTimeoutSeconds) * time.Second
}

// DialogDelay returns the credential entry retry delay as a duration.
func (c *Config) DialogDelay() time.Duration {
	return time.Duration(c.DialogDelayMillis) * time.Millisecond
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.App == "" {
		return fmt.Errorf("app name must not be empty")
	}
	if c.CheckIntervalSeconds <= 0 {
		return fmt.Errorf("check interval must be positive")
	}
	if c.PingTimeoutSeconds <= 0 {
		return fmt.Errorf("ping timeout must be positive")
	}
	if c.ConnectPolls <= 0 || c.DisconnectPolls <= 0 {
		return fmt.Errorf("poll budgets must be positive")
	}
	if c.DialogAttempts <= 0 {
		return fmt.Errorf("dialog attempts must be positive")
	}
	return nil
}

// Path returns the configuration file path following the XDG Base
// Directory spec.
func Path() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, AppName, ConfigFileName), nil
}

// Load reads the configuration from disk. A missing file yields the
// defaults; a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk using atomic write (write to
// temp, then rename). Parent directories are created as needed.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up temp file on failure
		return fmt.Errorf("failed to finalize config file: %w", err)
	}

	return nil
}
