package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapi/internal/config"
	"todoapi/internal/logging"
	"todoapi/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("todoapi: %v", err)
	}
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(stdout, cfg.LogLevel, cfg.LogFormat)

	app, err := server.Build(ctx, cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error(context.Background(), "error releasing resources", "error", err)
		}
	}()

	listenErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting server", "addr", cfg.AppPort, "db_driver", cfg.DBDriver, "storage", cfg.StorageDriver)
		listenErr <- app.HTTP.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down server")
	if err := app.HTTP.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error(context.Background(), "error during shutdown", "error", err)
	}
	logger.Info(context.Background(), "server gracefully stopped")
	return nil
}
