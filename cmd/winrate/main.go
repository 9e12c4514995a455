package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/okian/winrate/internal/cli"
	"github.com/okian/winrate/internal/config"
	"github.com/okian/winrate/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env feeds the WINRATE_ env layer; it is optional.
	_ = godotenv.Load()

	// Logs go to stderr so stdout carries only the command's report.
	if err := logger.InitTo(os.Stderr); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	if err := cli.Run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
