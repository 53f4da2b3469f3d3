// Package logging configures the application-wide slog loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes the default logger. Text output goes to stderr; debug
// enables the debug level.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// NewFileLogger creates a JSON logger writing to a rotated log file. The
// returned close function flushes and closes the underlying writer. The
// service name is attached to every record.
func NewFileLogger(logFilePath, service string, level slog.Leveler) (*slog.Logger, func() error, error) {
	if dir := filepath.Dir(logFilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}

	writer := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("service", service)
	return logger, writer.Close, nil
}

// NopLogger returns a logger that discards everything, used as a fallback
// when file logging cannot be initialized.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
