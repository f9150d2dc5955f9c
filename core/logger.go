package core

import (
	"log/slog"
	"os"
)

// Logger is the logging interface used by documents.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefaultLogger is a Logger backed by slog that prefixes every message.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger returns a Logger writing text records to stderr.
func NewDefaultLogger(level slog.Level) *DefaultLogger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	return &DefaultLogger{logger: logger}
}

// NewLogger wraps an existing slog.Logger.
func NewLogger(logger *slog.Logger) *DefaultLogger {
	return &DefaultLogger{logger: logger}
}

const prefix = "[quill] "

// Debug logs msg at the Debug level.
func (d *DefaultLogger) Debug(msg string, args ...any) {
	d.logger.Debug(prefix+msg, args...)
}

// Info logs msg at the Info level.
func (d *DefaultLogger) Info(msg string, args ...any) {
	d.logger.Info(prefix+msg, args...)
}

// Warn logs msg at the Warn level.
func (d *DefaultLogger) Warn(msg string, args ...any) {
	d.logger.Warn(prefix+msg, args...)
}

// Error logs msg at the Error level.
func (d *DefaultLogger) Error(msg string, args ...any) {
	d.logger.Error(prefix+msg, args...)
}
