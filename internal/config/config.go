package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultQuietPeriod    = 500 * time.Millisecond
	DefaultRescanInterval = 5 * time.Second

	// MaxQuietPeriod bounds quiet_period; anything longer makes settled
	// geometry useless for restore.
	MaxQuietPeriod = time.Minute
)

// WindowMatch selects windows to track. Class is compared against WM_CLASS
// (case-insensitive, exact); Title is a case-sensitive substring of the
// window title. Both must match when both are set.
type WindowMatch struct {
	Class string `yaml:"class,omitempty"`
	Title string `yaml:"title,omitempty"`
}

// Config is the effective daemon configuration.
type Config struct {
	// QuietPeriod is how long a window must stop moving/resizing before its
	// geometry is considered settled.
	QuietPeriod time.Duration `yaml:"quiet_period"`

	// Display overrides $DISPLAY.
	Display string `yaml:"display,omitempty"`

	// StateFile overrides the geometry store location.
	StateFile string `yaml:"state_file,omitempty"`

	// RestoreOnStart applies stored geometry when a window is first tracked.
	RestoreOnStart bool `yaml:"restore_on_start"`

	// RestoreHotkey restores stored geometry of the active window.
	RestoreHotkey string `yaml:"restore_hotkey,omitempty"`

	// RescanInterval controls how often new matching windows are picked up.
	RescanInterval time.Duration `yaml:"rescan_interval"`

	LogLevel string `yaml:"log_level"`

	// Windows lists the windows to track. Empty tracks the window that is
	// active when the daemon starts.
	Windows []WindowMatch `yaml:"windows,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		QuietPeriod:    DefaultQuietPeriod,
		RestoreOnStart: true,
		RescanInterval: DefaultRescanInterval,
		LogLevel:       "info",
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if c.QuietPeriod <= 0 {
		return &ValidationError{Path: "quiet_period", Err: fmt.Errorf("quiet_period must be > 0")}
	}
	if c.QuietPeriod > MaxQuietPeriod {
		return &ValidationError{Path: "quiet_period", Err: fmt.Errorf("quiet_period must be <= %s", MaxQuietPeriod)}
	}
	if c.RescanInterval < time.Second {
		return &ValidationError{Path: "rescan_interval", Err: fmt.Errorf("rescan_interval must be >= 1s")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	for i, m := range c.Windows {
		if strings.TrimSpace(m.Class) == "" && strings.TrimSpace(m.Title) == "" {
			return &ValidationError{
				Path: fmt.Sprintf("windows.%d", i),
				Err:  fmt.Errorf("window matcher needs a class or a title"),
			}
		}
	}
	return nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Save writes the configuration to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
