// Package config handles the configuration directory, the config file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the TOML config filename inside the config directory.
	ConfigFile = "config.toml"

	// DefaultBaseURL is the task server used when nothing else is configured.
	DefaultBaseURL = "http://127.0.0.1:5000"

	// DefaultLogLevel is the log level used when nothing else is configured.
	DefaultLogLevel = "warn"
)

// Environment variables that override the config file.
const (
	EnvBaseURL  = "TODO_BASE_URL"
	EnvTimeout  = "TODO_TIMEOUT"
	EnvLogLevel = "TODO_LOG_LEVEL"
)

var (
	// ErrInvalidBaseURL is returned by Validate for unusable base URLs.
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrInvalidLogLevel is returned by Validate for unknown level names.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the task server root; the task collection lives at BaseURL/tasks.
	BaseURL string

	// Timeout bounds each request issued by the controller. Zero means no timeout.
	Timeout time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig mirrors config.toml.
type fileConfig struct {
	BaseURL  string `toml:"base_url"`
	Timeout  string `toml:"timeout"`
	LogLevel string `toml:"log_level"`
}

// New creates a new Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		BaseURL:  DefaultBaseURL,
		LogLevel: DefaultLogLevel,
	}, nil
}

// Load builds a Config from, in increasing priority:
// defaults, the config file in the config directory, and environment variables.
// Command-line flags are applied by the caller on top of the result.
// A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if cfg.HasConfigFile() {
		if err := cfg.loadFile(cfg.ConfigPath()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", cfg.ConfigPath(), err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		c.Timeout = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q (scheme must be http or https)", ErrInvalidBaseURL, c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q (missing host)", ErrInvalidBaseURL, c.BaseURL)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q (want debug, info, warn or error)", ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	return nil
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

// ConfigPath returns the path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// HasConfigFile checks if the config file exists.
func (c *Config) HasConfigFile() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}
