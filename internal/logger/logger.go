// Package logger builds the zap loggers used by the command-line tools.
// Library packages take a *zap.Logger explicitly; only commands touch the
// package globals.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It is a no-op logger until Init runs.
var Log = zap.NewNop()

// Sugar is Log in sugared form.
var Sugar = Log.Sugar()

// Options describes where log entries go.
type Options struct {
	Level string // debug, info, warn or error

	// File output, rotated by lumberjack. Empty Path disables it.
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Console receives human-readable entries; nil disables console
	// output. Commands pass os.Stderr so stdout stays machine-readable.
	Console io.Writer
}

// DefaultOptions returns console logging at info level to stderr with
// rotation settings ready for a file path.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
		Console:    os.Stderr,
	}
}

// ParseLevel converts a level name to a zapcore.Level. An empty name is
// info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New builds a logger from opts. With neither console nor file output the
// result discards everything.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core

	if opts.Console != nil {
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          "logger",
			MessageKey:       "msg",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeName:       zapcore.FullNameEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(opts.Console), lvl))
	}

	if opts.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "msg",
			CallerKey:      "caller",
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeName:     zapcore.FullNameEncoder,
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// Init builds a logger from opts and installs it as Log and Sugar.
func Init(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	Log = l
	Sugar = l.Sugar()
	return nil
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Log.Sync()
}

// Named returns a child of Log for one component.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}
