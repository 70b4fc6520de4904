// Package log configures the process-wide slog default used by the API server
// and the CLI. Components get their own logger through WithModule so log lines
// can be traced back to the emitting layer.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr at the given level. Unknown level
// names fall back to info.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns a logger scoped to one component of the service.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
