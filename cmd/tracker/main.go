package main

import (
	"context"
	"os"
	"time"

	"tracker/internal/backend"
	"tracker/internal/cli"
	"tracker/internal/config"
	apphttp "tracker/internal/http"
	"tracker/internal/ledger"
	"tracker/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(nil))
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentApp)

	if err := run(cfg, logger); err != nil {
		logger.Error("Tracker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	be, err := backend.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	store, err := ledger.Open(ctx, be.Persister, ledger.WithLogger(logger))
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(":"+cfg.Port, store,
		apphttp.WithLocation(loc),
		apphttp.WithLogger(logger),
		apphttp.WithWriteRateLimit(cfg.WriteRateLimit),
	)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	logger.Info("Starting tracker server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"timezone", loc.String(),
		log.FieldCount, store.Len())
	return cli.Serve(ctx, srv, cfg.ShutdownTimeout, logger)
}
