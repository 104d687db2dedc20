package config

import (
	"fmt"
	"slices"

	"go.uber.org/zap/zapcore"
)

// LogConfig represents the [log] section
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error
	Level string `toml:"level" mapstructure:"level"`

	// Format is console or json
	Format string `toml:"format" mapstructure:"format"`
}

// ZapLevel returns the configured level.
func (l *LogConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(l.Level)
}

// IsJSON reports whether logs are written as JSON.
func (l *LogConfig) IsJSON() bool {
	return l.Format == "json"
}

// Validate performs validation on the log configuration
func (l *LogConfig) Validate() error {
	if _, err := l.ZapLevel(); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	validFormats := []string{"console", "json"}
	if !slices.Contains(validFormats, l.Format) {
		return fmt.Errorf("invalid format: %s (valid options: console, json)", l.Format)
	}
	return nil
}
