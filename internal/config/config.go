package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Region       string             `yaml:"region,omitempty"`
	ValidityDays int                `yaml:"validity_days"`
	RenewWindow  float64            `yaml:"renew_window"`
	Targets      map[string]*Target `yaml:"targets"`
}

// configDir is the default config directory
const configDir = ".config/anchorctl"
const configFile = "config.yaml"
const caDir = "ca"

// Defaults applied when the config file is absent or fields are zero.
const (
	// DefaultValidityDays is the requested certificate validity period.
	DefaultValidityDays = 7

	// DefaultRenewWindow is the fraction of the validity period under which
	// a certificate is considered due for renewal.
	DefaultRenewWindow = 0.3
)

// New creates a new Config with default values
func New() *Config {
	return &Config{
		ValidityDays: DefaultValidityDays,
		RenewWindow:  DefaultRenewWindow,
		Targets:      make(map[string]*Target),
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// Path returns the config file path
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// CADir returns the directory holding the self-managed local CA key pair.
func CADir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, caDir), nil
}

// Load reads the config from disk
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Initialize Targets map if nil
	if cfg.Targets == nil {
		cfg.Targets = make(map[string]*Target)
	}
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = DefaultValidityDays
	}
	if cfg.RenewWindow <= 0 || cfg.RenewWindow >= 1 {
		cfg.RenewWindow = DefaultRenewWindow
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AddTarget adds a target to the config
func (c *Config) AddTarget(target *Target) error {
	if _, exists := c.Targets[target.Name]; exists {
		return fmt.Errorf("target %s already exists", target.Name)
	}
	c.Targets[target.Name] = target
	return nil
}

// GetTarget returns a target by name
func (c *Config) GetTarget(name string) (*Target, error) {
	target, exists := c.Targets[name]
	if !exists {
		return nil, fmt.Errorf("target %s not found", name)
	}
	return target, nil
}

// RemoveTarget removes a target from the config
func (c *Config) RemoveTarget(name string) error {
	if _, exists := c.Targets[name]; !exists {
		return fmt.Errorf("target %s not found", name)
	}
	delete(c.Targets, name)
	return nil
}

// ListTargets returns all targets
func (c *Config) ListTargets() []*Target {
	targets := make([]*Target, 0, len(c.Targets))
	for _, t := range c.Targets {
		targets = append(targets, t)
	}
	return targets
}

// EffectiveValidityDays returns the validity period for a target, falling
// back to the config-wide default.
func (c *Config) EffectiveValidityDays(t *Target) int {
	if t.ValidityDays > 0 {
		return t.ValidityDays
	}
	return c.ValidityDays
}
