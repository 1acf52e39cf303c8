// Package config loads the idu configuration file. The file is optional;
// every setting has a working default so a missing or partial file is never
// fatal.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
type Config struct {
	Settings struct {
		SortBySize    bool   `yaml:"sort_by_size"`    // Start with size ordering instead of name ordering
		AbsolutePaths bool   `yaml:"absolute_paths"`  // Render absolute paths instead of base-relative ones
		HumanSizes    bool   `yaml:"human_sizes"`     // Render sizes as human-readable strings
		DuCommand     string `yaml:"du_command"`      // Disk-usage binary to invoke
	} `yaml:"settings"`
	Watch struct {
		Enabled bool `yaml:"enabled"` // Invalidate cached listings when directories change on disk
	} `yaml:"watch"`
}

// New returns the default configuration.
func New() *Config {
	cfg := &Config{}
	cfg.Settings.DuCommand = "du"
	return cfg
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Settings.DuCommand == "" {
		return fmt.Errorf("settings.du_command must not be empty")
	}
	return nil
}

// LoadConfig loads configuration from the default location
// (~/.config/idu/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "idu", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.Settings.SortBySize = tempCfg.Settings.SortBySize
	cfg.Settings.AbsolutePaths = tempCfg.Settings.AbsolutePaths
	cfg.Settings.HumanSizes = tempCfg.Settings.HumanSizes
	if tempCfg.Settings.DuCommand != "" {
		cfg.Settings.DuCommand = tempCfg.Settings.DuCommand
	}
	cfg.Watch.Enabled = tempCfg.Watch.Enabled

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
