// Package logger provides slog helpers shared by all services and repositories.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Scope returns a "scope" attribute used to namespace log lines per component,
// e.g. log.With(logger.Scope("graph.repo")).
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an "error" attribute for structured error logging.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// NewLogger builds the process-wide slog logger. The level comes from
// LOG_LEVEL (debug, info, warn/warning, error; case-insensitive, default
// info). GO_ENV=production switches to the JSON handler; anything else uses
// the text handler for readable local output.
func NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "info":
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
