// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable that sets the log level.
const EnvLevel = "LABELER_LOG_LEVEL"

var level = new(slog.LevelVar)

// Configure installs a text handler writing to w as the default logger. The
// level comes from LABELER_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults
// to INFO; debug forces DEBUG.
func Configure(w io.Writer, debug bool) {
	level.Set(ParseLevel(os.Getenv(EnvLevel)))
	if debug {
		level.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to a slog level. Unknown names give INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}
