// Package logging builds the zerolog loggers used by the client.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options select where log lines go and how they look.
type Options struct {
	Writer io.Writer
	Level  string
	// Console switches to the human-readable writer (CLI mode).
	Console bool
}

// New returns a logger for opts. A nil writer yields a disabled logger.
func New(opts Options) zerolog.Logger {
	if opts.Writer == nil {
		return zerolog.Nop()
	}
	out := opts.Writer
	if opts.Console {
		out = zerolog.ConsoleWriter{
			Out:        opts.Writer,
			TimeFormat: time.Kitchen,
		}
	}
	return zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel converts a config string to a zerolog level. Unknown values
// fall back to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// OpenFile opens (appending) the log file at path, creating parent dirs.
// The caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
