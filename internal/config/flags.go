package config

import (
	"flag"
	"strings"
)

// Flags holds the command-line overrides registered on a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config      string
	logLevel    string
	logFile     string
	format      string
	out         string
	frame       float64
	textureDirs stringList
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file as well")
	fs.StringVar(&f.format, "format", "", "Export format (glb, gltf, obj)")
	fs.StringVar(&f.out, "out", "", "Export output directory")
	fs.Float64Var(&f.frame, "frame", -1, "Animation frame for posed exports")
	fs.Var(&f.textureDirs, "texture-dir", "Extra texture directory (repeatable)")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.config
}

// apply copies every flag that was set on the command line into cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "log-level":
			cfg.Logging.Level = f.logLevel
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		case "format":
			cfg.Export.Format = strings.ToLower(f.format)
		case "out":
			cfg.Export.OutputDir = f.out
		case "frame":
			cfg.Export.Frame = float32(f.frame)
		case "texture-dir":
			cfg.Loader.TextureDirs = append(cfg.Loader.TextureDirs, f.textureDirs...)
		}
	})
}
