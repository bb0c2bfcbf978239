// Package logging configures the process-wide structured logger and
// hands out per-component child loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string

	// Format is "text" or "json".
	Format string

	// File, when set, duplicates log output to the named file in
	// addition to stderr.
	File string

	// ReportCaller includes the call site on each record.
	ReportCaller bool
}

// New builds the root logger. Unknown levels fall back to info rather
// than failing startup.
func New(opts Options) (*log.Logger, error) {
	var w io.Writer = os.Stderr

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", opts.File, err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportCaller:    opts.ReportCaller,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	logger.SetLevel(parseLevel(opts.Level))

	if strings.EqualFold(opts.Format, "json") {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger, nil
}

// Component returns a child logger tagged with a component name, e.g.
// "watcher" or "ingest".
func Component(logger *log.Logger, name string) *log.Logger {
	return logger.With("component", name)
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
