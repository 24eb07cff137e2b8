// Package config provides configuration loading and management for ctcormack.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"ctcormack/pkg/remap"
)

// Config represents the application configuration loaded from YAML.
// The transform constants themselves are fixed and never configurable.
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Remap parameters
	Remap struct {
		// Direction is "forward" (Hounsfield to Cormack) or "inverse"
		Direction string `yaml:"direction"`

		// Prefix is prepended to output names. Empty picks the default
		// for the direction.
		Prefix string `yaml:"prefix"`

		// RejectNonFinite fails a volume holding NaN or infinite samples
		// instead of passing them through
		RejectNonFinite bool `yaml:"rejectNonFinite"`
	} `yaml:"remap"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default remap parameters
	cfg.Remap.Direction = remap.CormackToHounsfield.String()
	cfg.Remap.Prefix = ""
	cfg.Remap.RejectNonFinite = false

	// Set default output parameters
	cfg.Output.Verbose = true

	return cfg
}

// Direction parses Remap.Direction
func (c *Config) Direction() (remap.Direction, error) {
	return remap.ParseDirection(c.Remap.Direction)
}

// Validate checks the configuration for values that cannot be used
func (c *Config) Validate() error {
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("invalid numCores %d: must be zero or positive", c.Processing.NumCores)
	}
	if _, err := c.Direction(); err != nil {
		return fmt.Errorf("invalid remap direction: %w", err)
	}
	if c.Remap.Prefix != "" && filepath.Base(c.Remap.Prefix) != c.Remap.Prefix {
		return fmt.Errorf("invalid prefix %q: must not contain a path separator", c.Remap.Prefix)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error in config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
