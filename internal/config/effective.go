package config

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid setting and, when known, where it came
// from.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()
	if raw.QuietPeriod != nil {
		cfg.QuietPeriod = *raw.QuietPeriod
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.StateFile != nil {
		cfg.StateFile = strings.TrimSpace(*raw.StateFile)
	}
	if raw.RestoreOnStart != nil {
		cfg.RestoreOnStart = *raw.RestoreOnStart
	}
	if raw.RestoreHotkey != nil {
		cfg.RestoreHotkey = strings.TrimSpace(*raw.RestoreHotkey)
	}
	if raw.RescanInterval != nil {
		cfg.RescanInterval = *raw.RescanInterval
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.Windows != nil {
		cfg.Windows = append([]WindowMatch(nil), raw.Windows...)
	}
	return cfg
}

// attachSourceContext fills in the file location of a validation error.
func attachSourceContext(err error, sources map[string]Source) error {
	verr, ok := err.(*ValidationError)
	if !ok || verr.Source.Kind != "" {
		return err
	}
	path := verr.Path
	for path != "" {
		if src, ok := sources[path]; ok {
			verr.Source = src
			return verr
		}
		idx := strings.LastIndex(path, ".")
		if idx < 0 {
			break
		}
		path = path[:idx]
	}
	return verr
}
