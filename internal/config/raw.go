package config

import "time"

// RawConfig mirrors Config with every field optional so that a file only
// overrides what it sets.
type RawConfig struct {
	QuietPeriod    *time.Duration `yaml:"quiet_period"`
	Display        *string        `yaml:"display"`
	StateFile      *string        `yaml:"state_file"`
	RestoreOnStart *bool          `yaml:"restore_on_start"`
	RestoreHotkey  *string        `yaml:"restore_hotkey"`
	RescanInterval *time.Duration `yaml:"rescan_interval"`
	LogLevel       *string        `yaml:"log_level"`
	Windows        []WindowMatch  `yaml:"windows"`
}
