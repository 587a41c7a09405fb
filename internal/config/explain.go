package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	quiet_period
//	display
//	state_file
//	restore_on_start
//	restore_hotkey
//	rescan_interval
//	log_level
//	windows
//	windows.<n>.class
//	windows.<n>.title
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch path {
	case "quiet_period":
		return cfg.QuietPeriod.String(), nil
	case "display":
		return cfg.Display, nil
	case "state_file":
		return cfg.StateFile, nil
	case "restore_on_start":
		return cfg.RestoreOnStart, nil
	case "restore_hotkey":
		return cfg.RestoreHotkey, nil
	case "rescan_interval":
		return cfg.RescanInterval.String(), nil
	case "log_level":
		return cfg.LogLevel, nil
	case "windows":
		return cfg.Windows, nil
	}

	parts := strings.Split(path, ".")
	if parts[0] == "windows" && len(parts) >= 2 {
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 || idx >= len(cfg.Windows) {
			return nil, fmt.Errorf("no window matcher at %q", path)
		}
		m := cfg.Windows[idx]
		if len(parts) == 2 {
			return m, nil
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "class":
				return m.Class, nil
			case "title":
				return m.Title, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
