package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/cli"
	apphttp "finanzas/internal/http"
	flog "finanzas/internal/log"
)

const (
	lookupCacheTTL  = 5 * time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ledger, res, err := cli.OpenLedger(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Categories and users change rarely; cache them in front of the ledger
	// so the cache is invalidated on every write that goes through it.
	cached := cache.NewStore(ledger, lookupCacheTTL)
	caches := cache.NewManager()
	cached.Register(caches)
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, cached, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             flog.Wrap(logger),
		Readiness:          ledger,
		Status: apphttp.Status{
			Mode:     string(res.Mode),
			Fallback: res.Fallback,
			Lenient:  res.Lenient,
		},
	})

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if err := ledger.Close(); err != nil {
			logger.Error("Ledger close error", "error", err)
		}
	})

	logger.Info("Starting finanzas server",
		"port", cfg.Port,
		"backend", res.Mode,
		"fallback", res.Fallback)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
