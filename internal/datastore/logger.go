// Package datastore provides logging for database operations.
package datastore

import (
	"log/slog"
	"sync"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

// getLogger returns the datastore package logger scoped to the datastore service.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = slog.Default().With("service", "datastore")
	})
	return serviceLogger
}
