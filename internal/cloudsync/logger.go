package cloudsync

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
		serviceLogger = slog.Default().With("service", "cloudsync")
	})
	return serviceLogger
}
