// Package logging builds the leveled console logger shared by the CLI,
// the REST backend and the controller.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "todo"

// Options holds configuration for the console logger.
type Options struct {
	Level           log.Level
	ReportTimestamp bool
}

// New creates a text logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel converts a level name to a log.Level.
// Unknown names fall back to warn; config.Validate rejects them before this runs.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// OptionsFor derives logger options from the configured level and the --debug flag.
// --debug always wins and turns on timestamps.
func OptionsFor(level string, debug bool) Options {
	if debug {
		return Options{Level: log.DebugLevel, ReportTimestamp: true}
	}
	return Options{Level: ParseLevel(level)}
}
