// Package config handles the settings bosh-ladle needs besides its flags:
// AWS credentials taken from the environment and a small persisted file of
// launch preferences.
//
// The file is stored as JSON at ~/.config/bosh-ladle/config.json (or the
// platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDir   = "bosh-ladle"
	fileName = "config.json"
)

// Region and image defaults used when neither the file nor the environment
// sets them.
const (
	DefaultRegion    = "us-east-1"
	DefaultImageName = "boshlite-*"
)

// Environment variables that override the persisted file.
const (
	EnvRegion        = "AWS_REGION"
	EnvDefaultRegion = "AWS_DEFAULT_REGION"
	EnvAMI           = "BOSH_LITE_AMI"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds launch preferences that persist across invocations.
type Config struct {
	Region    string `json:"region,omitempty"`
	AMI       string `json:"ami,omitempty"`
	ImageName string `json:"image_name,omitempty"`
}

// Resolve returns the effective configuration for one run: a copy of c
// with environment overrides and defaults applied.
// AWS_REGION wins over AWS_DEFAULT_REGION, which wins over the file.
func (c *Config) Resolve(getenv func(string) string) Config {
	s := *c

	if v := strings.TrimSpace(getenv(EnvDefaultRegion)); v != "" {
		s.Region = v
	}
	if v := strings.TrimSpace(getenv(EnvRegion)); v != "" {
		s.Region = v
	}
	if v := strings.TrimSpace(getenv(EnvAMI)); v != "" {
		s.AMI = v
	}

	if s.Region == "" {
		s.Region = DefaultRegion
	}
	if s.ImageName == "" {
		s.ImageName = DefaultImageName
	}
	return s
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
