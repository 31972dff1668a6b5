// Package config handles ms3dtool configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/skelmesh/internal/logger"
)

// Config holds all tool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Loader  LoaderConfig  `yaml:"loader"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// LoaderConfig holds model loading settings.
type LoaderConfig struct {
	TextureDirs []string `yaml:"texture_dirs"` // searched after the model's own directory
	MaxIssues   int      `yaml:"max_issues"`   // logged per model, 0 for all
}

// Export formats.
const (
	FormatGLB  = "glb"
	FormatGLTF = "gltf"
	FormatOBJ  = "obj"
)

// ExportConfig holds export settings.
type ExportConfig struct {
	Format    string  `yaml:"format"`
	OutputDir string  `yaml:"output_dir"`
	Frame     float32 `yaml:"frame"` // OBJ pose frame, negative for rest pose
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Loader: LoaderConfig{
			MaxIssues: 20,
		},
		Export: ExportConfig{
			Format:    FormatGLB,
			OutputDir: ".",
			Frame:     -1,
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Export.Format {
	case FormatGLB, FormatGLTF, FormatOBJ:
	default:
		return fmt.Errorf("export.format: unknown format %q", c.Export.Format)
	}
	if c.Loader.MaxIssues < 0 {
		return fmt.Errorf("loader.max_issues: must not be negative, got %d", c.Loader.MaxIssues)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce: must not be negative, got %v", c.Watch.Debounce)
	}
	return nil
}

// LoggerOptions converts the logging section into logger options with
// console output on stderr.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.DefaultOptions()
	opts.Level = c.Logging.Level
	opts.Path = c.Logging.LogFile
	opts.MaxSizeMB = c.Logging.MaxSizeMB
	opts.MaxBackups = c.Logging.MaxBackups
	opts.MaxAgeDays = c.Logging.MaxAgeDays
	opts.Compress = c.Logging.Compress
	return opts
}
