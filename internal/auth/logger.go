package auth

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
		serviceLogger = slog.Default().With("service", "auth")
	})
	return serviceLogger
}
