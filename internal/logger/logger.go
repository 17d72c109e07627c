// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"
)

var globalLogger *slog.Logger

// New builds a logger for env writing to w.
//
//	development       text, debug, with source
//	development-json  JSON, debug, with source
//	production        JSON, info
//	staging           JSON, info
//
// Unknown envs fall back to production settings.
func New(env string, w io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var handler slog.Handler
	switch env {
	case "development":
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, &opts)
	case "development-json":
		opts.Level = slog.LevelDebug
		handler = slog.NewJSONHandler(w, &opts)
	case "production", "staging":
		opts.Level = slog.LevelInfo
		opts.AddSource = false
		handler = slog.NewJSONHandler(w, &opts)
	default:
		log.Printf("WARNING: Unknown APP_ENV '%s'. Defaulting to production logging.\n", env)
		opts.Level = slog.LevelInfo
		opts.AddSource = false
		handler = slog.NewJSONHandler(w, &opts)
	}
	return slog.New(handler)
}

// InitLogger installs the logger for env as the global and slog default.
func InitLogger(env string) {
	globalLogger = New(env, os.Stdout)
	slog.SetDefault(globalLogger)
}

// L returns the global slog logger instance, initialising a development
// logger if InitLogger has not run yet.
func L() *slog.Logger {
	if globalLogger == nil {
		InitLogger("development")
		log.Println("WARNING: Logger accessed before explicit initialization. Using default development logger.")
	}
	return globalLogger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
