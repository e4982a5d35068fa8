// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"

	"github.com/memo-cli/memo/internal/core/ports"
)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
}

// New creates a Logger writing to w. Debug messages are emitted only when
// debug is set.
func New(w io.Writer, debug bool) ports.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := NewPrettyHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{logger: slog.New(handler)}
}

// Debug logs a debug message with optional key/value attributes.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Error logs an error as a single line. The wrap chain renders inline; no
// stack traces reach the user.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.logger.Error(err.Error())
}
