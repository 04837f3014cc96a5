// Package config handles the XDG configuration directory, the stored
// session path, and API endpoint resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// EnvBaseURL overrides the API base URL.
	EnvBaseURL = "TODO_API_URL"

	// DefaultBaseURL is used when no flag, env var, or config file sets one.
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the API base URL, without a trailing slash.
	BaseURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors the optional config.yaml.
type fileConfig struct {
	APIURL  string `yaml:"api_url"`
	Timeout string `yaml:"timeout"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
// The base URL comes from TODO_API_URL, falling back to the api_url key in
// config.yaml, falling back to DefaultBaseURL.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:     dir,
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if env := os.Getenv(EnvBaseURL); env != "" {
		cfg.BaseURL = env
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// loadFile applies settings from config.yaml when it exists.
func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if fc.APIURL != "" {
		c.BaseURL = fc.APIURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w", ConfigFile, err)
		}
		c.Timeout = d
	}
	return nil
}

// ConfigPath returns the path to the optional settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}
