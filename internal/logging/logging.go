// Package logging builds the slog loggers used by the command line.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// LevelSilent is above every standard level and suppresses all records.
const LevelSilent = slog.Level(100)

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewDiscardLogger returns a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromString converts debug, info, warn or error (case-insensitive) to
// a slog.Level. The second result is false for anything else.
func LevelFromString(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromVerbosity maps -v counts to a level:
// 0 is warn, 1 is info, 2 or more is debug. quiet wins over verbosity.
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return LevelSilent
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Resolve picks the effective level. An explicit, recognised level name
// overrides the verbosity flags unless quiet is set.
func Resolve(name string, verbosity int, quiet bool) slog.Level {
	if quiet {
		return LevelSilent
	}
	if level, ok := LevelFromString(name); ok && verbosity == 0 {
		return level
	}
	return LevelFromVerbosity(verbosity, false)
}
