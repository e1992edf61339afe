// Package logging configures the process-wide slog logger. Trace output never goes to stdout,
// which carries the invocation result.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// ParseLevel maps a LOG_LEVEL value to a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w. format is "json" or anything else for text.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup installs a logger as the slog default and returns it.
func Setup(w io.Writer, level, format string, attrs ...any) *slog.Logger {
	logger := New(w, level, format)
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	slog.SetDefault(logger)
	return logger
}
