// Package telemetry wires the global zerolog logger. Output goes to a
// file in the data directory so log lines never tear the TUI; commands
// that run without the TUI may pass an empty path to log to stderr.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Returns a close function for the
// log file, safe to call even when logging to stderr.
func Init(logPath, level string) (func() error, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if logPath == "" {
		log.Logger = zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	log.Logger = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return f.Close, nil
}
