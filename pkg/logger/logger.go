package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvVarLogLevel is the environment variable name for setting the log level.
	EnvVarLogLevel = "LOG_LEVEL"

	// EnvVarLogFormat is the environment variable name for choosing between
	// "json" (default) and "text" output.
	EnvVarLogFormat = "LOG_FORMAT"
)

// NewStructuredLogger creates a new structured logger writing to stderr.
// Defined module name and version are included in the logger's context.
// AddSource is enabled for debug level logging only.
// Parameters:
//   - module: The name of the module/application using the logger.
//   - version: The version of the module/application (e.g., "v1.0.0").
//   - level: The log level as a string (e.g., "debug", "info", "warn", "error").
//   - format: "json" or "text".
func NewStructuredLogger(module, version, level, format string) *slog.Logger {
	return NewStructuredLoggerTo(os.Stderr, module, version, level, format)
}

// NewStructuredLoggerTo is NewStructuredLogger with an explicit writer.
func NewStructuredLoggerTo(w io.Writer, module, version, level, format string) *slog.Logger {
	lev := ParseLogLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h).With("module", module, "version", version)
}

// NewLogLogger returns a standard library log.Logger that forwards every line
// to the default slog logger at level. It is used for the HTTP server error log.
func NewLogLogger(level slog.Level) *log.Logger {
	return slog.NewLogLogger(slog.Default().Handler(), level)
}

// SetDefaultLogger initializes the structured logger and sets it as the default logger.
// Derives log level from LOG_LEVEL and output format from LOG_FORMAT.
func SetDefaultLogger(module, version string) {
	SetDefaultLoggerWithLevel(module, version, os.Getenv(EnvVarLogLevel))
}

// SetDefaultLoggerWithLevel initializes the structured logger with the specified log level
// and sets it as the default logger.
func SetDefaultLoggerWithLevel(module, version, level string) {
	slog.SetDefault(NewStructuredLogger(module, version, level, os.Getenv(EnvVarLogFormat)))
}

// ParseLogLevel converts a string representation of a log level into a slog.Level.
// Defaults to slog.LevelInfo for unrecognized strings.
func ParseLogLevel(level string) slog.Level {
	var lev slog.Level

	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lev = slog.LevelDebug
	case "warn", "warning":
		lev = slog.LevelWarn
	case "error":
		lev = slog.LevelError
	default:
		lev = slog.LevelInfo
	}

	return lev
}
