package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.QuietPeriod != 500*time.Millisecond {
		t.Fatalf("expected quiet_period 500ms, got %v", cfg.QuietPeriod)
	}
	if !cfg.RestoreOnStart {
		t.Fatalf("expected restore_on_start to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no file recorded, got %q", res.File)
	}
	if res.Config.QuietPeriod != DefaultQuietPeriod {
		t.Fatalf("expected default quiet period, got %v", res.Config.QuietPeriod)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"quiet_period: 250ms",
		"display: \":1\"",
		"restore_on_start: false",
		"restore_hotkey: \"Mod4-Shift-r\"",
		"rescan_interval: 10s",
		"log_level: DEBUG",
		"windows:",
		"  - class: Firefox",
		"  - title: notes",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.QuietPeriod != 250*time.Millisecond {
		t.Fatalf("expected quiet_period 250ms, got %v", cfg.QuietPeriod)
	}
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}
	if cfg.RestoreOnStart {
		t.Fatalf("expected restore_on_start false")
	}
	if cfg.RestoreHotkey != "Mod4-Shift-r" {
		t.Fatalf("unexpected restore_hotkey %q", cfg.RestoreHotkey)
	}
	if cfg.RescanInterval != 10*time.Second {
		t.Fatalf("expected rescan_interval 10s, got %v", cfg.RescanInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level normalized to debug, got %q", cfg.LogLevel)
	}
	if len(cfg.Windows) != 2 || cfg.Windows[0].Class != "Firefox" || cfg.Windows[1].Title != "notes" {
		t.Fatalf("unexpected windows: %#v", cfg.Windows)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "quiet_periods: 1s\n")

	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadFromPath_InvalidQuietPeriodReportsLocation(t *testing.T) {
	path := writeConfig(t, "log_level: info\nquiet_period: 2m\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "quiet_period" {
		t.Fatalf("expected path quiet_period, got %q", verr.Path)
	}
	if verr.Source.Kind != SourceFile || verr.Source.Line != 2 {
		t.Fatalf("expected file source on line 2, got %#v", verr.Source)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected location in message, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero quiet period", func(c *Config) { c.QuietPeriod = 0 }, "quiet_period"},
		{"negative quiet period", func(c *Config) { c.QuietPeriod = -time.Second }, "quiet_period"},
		{"short rescan", func(c *Config) { c.RescanInterval = 10 * time.Millisecond }, "rescan_interval"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty matcher", func(c *Config) { c.Windows = []WindowMatch{{Class: "a"}, {}} }, "windows.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for level, want := range tests {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestExplain_FileAndDefaultSources(t *testing.T) {
	path := writeConfig(t, "windows:\n  - class: kitty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	value, src, err := Explain(res, "windows.0.class")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "kitty" || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("unexpected explain result: %v %#v", value, src)
	}

	value, src, err = Explain(res, "quiet_period")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if value != "500ms" || src.Kind != SourceDefault {
		t.Fatalf("unexpected explain result: %v %#v", value, src)
	}

	if _, _, err := Explain(res, "nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "windows.3.class"); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.QuietPeriod = 750 * time.Millisecond
	cfg.Windows = []WindowMatch{{Class: "Emacs"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.QuietPeriod != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %v", loaded.QuietPeriod)
	}
	if len(loaded.Windows) != 1 || loaded.Windows[0].Class != "Emacs" {
		t.Fatalf("unexpected windows: %#v", loaded.Windows)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuietPeriod = 0
	if err := cfg.SaveTo(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
}
