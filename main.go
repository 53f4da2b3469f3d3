package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aquasense/shrimpscale/cmd"
	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/logging"
)

func main() {
	settings, err := conf.Load(conf.DefaultConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.Debug)

	// In normal kiosk operation logs go to a rotated file; debug runs keep
	// everything on stderr.
	if !settings.Debug {
		fileLogger, closeLogger, err := logging.NewFileLogger(
			filepath.Join("logs", "shrimpscale.log"), "kiosk", slog.LevelInfo)
		if err == nil {
			slog.SetDefault(fileLogger)
			defer func() { _ = closeLogger() }()
		} else {
			slog.Warn("file logging unavailable, staying on stderr", "error", err)
		}
	}

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
