package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artidentifier/artid/cmd"
	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/logging"
	"github.com/artidentifier/artid/internal/telemetry"
)

// Set at build time with -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}
	settings.Version = version
	settings.BuildDate = buildDate

	log := settings.Main.Log
	closeLog, err := logging.Setup(logging.Config{
		Level:   log.Level,
		Console: log.Console,
		File:    log.File,
		Rotation: logging.Rotation{
			Path:       log.Path,
			MaxSize:    log.MaxSize,
			MaxBackups: log.MaxBackups,
			MaxAge:     log.MaxAge,
			Compress:   log.Compress,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logging: %v\n", err)
		return 1
	}
	defer func() { _ = closeLog() }()

	if err := telemetry.Init(settings); err != nil {
		logging.Warn("error reporting disabled", "error", err)
	}
	defer telemetry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.RootCommand(settings).ExecuteContext(ctx); err != nil {
		logging.Error("command failed", "error", err)
		return 1
	}
	return 0
}
