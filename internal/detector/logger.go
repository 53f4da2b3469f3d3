// Package detector provides logging for the detection engine.
package detector

import (
	"log/slog"
	"sync"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = slog.Default().With("service", "detector")
	})
	return serviceLogger
}
