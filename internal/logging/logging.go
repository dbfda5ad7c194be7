// Package logging installs the process-wide slog logger, rendered by
// charmbracelet/log.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures the logger.
type Options struct {
	Level     string // debug, info, warn, error
	Format    string // text, json, logfmt
	Timestamp bool
	Prefix    string
}

// New returns a charm logger for opts. The returned logger is also an
// slog.Handler.
func New(w io.Writer, opts Options) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamp,
		Prefix:          opts.Prefix,
	})
}

// Setup installs a logger for opts as the slog default and returns it so
// callers can adjust the level later (config reload, --debug).
func Setup(w io.Writer, opts Options) *log.Logger {
	logger := New(w, opts)
	slog.SetDefault(slog.New(logger))
	return logger
}

// ParseLevel maps a level name to a charm log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a format name to a charm formatter, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
