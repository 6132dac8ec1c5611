// Package logging sets up zerolog for the TUI (file output) and the CLI (stderr).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// New returns a console-formatted logger writing to w.
func New(w io.Writer, verbose bool, noColor bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
		NoColor:    noColor,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// NewFile opens (appends to) the log file at path.
// The TUI owns the terminal, so nothing may be written to stdout or stderr while it runs.
func NewFile(path string, verbose bool) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(f, verbose, true), f, nil
}

// RetryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
// Only warnings and errors are logged, retries are noisy at info level.
type RetryLogger struct {
	Logger zerolog.Logger
}

func (l RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l RetryLogger) Info(msg string, keysAndValues ...interface{}) {
}

func (l RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn().Fields(keysAndValues).Msg("retry: " + msg)
}
