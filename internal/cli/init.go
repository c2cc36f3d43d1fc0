// Package cli holds the start-up steps shared by cmd/finanzas,
// cmd/finanzas-worker and cmd/finanzasctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/backend"
	"finanzas/internal/config"
	flog "finanzas/internal/log"
	"finanzas/internal/services"
)

// SetupLogger installs a text logger at the given LOG_LEVEL as the default.
// Unknown levels fall back to info with a warning.
func SetupLogger(level string) *slog.Logger {
	lvl, err := flog.ParseLevel(level)
	cfg := flog.DefaultConfig()
	cfg.Level = lvl
	l := flog.New(cfg)
	flog.SetDefault(l)
	if err != nil {
		l.Logger.Warn("Invalid LOG_LEVEL, using info", "error", err)
	}
	return l.Logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process when it is
// invalid.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger resolves the backend once, optionally connects the AMQP
// publisher and returns the ledger with its mode report. A broker that cannot
// be reached leaves the ledger without a publisher.
func OpenLedger(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*services.Ledger, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}
	logger.Info("Backend ready",
		"mode", res.Mode,
		"fallback", res.Fallback,
		"lenient", res.Lenient)

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			publisher = client
		}
	}

	// Ledger.Close closes the publisher as well as the backend.
	return services.NewLedger(res.Backend, publisher, res.Cleanup), res, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM, after
// cleanup has run, and a channel closed once shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached")
		}
		cancel()
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown started by GracefulShutdown is
// complete.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
