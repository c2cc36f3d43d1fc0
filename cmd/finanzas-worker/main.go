package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
	"finanzas/internal/sheets/memory"
	"finanzas/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finanzas-worker")

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
	}()

	var exporter sheets.LedgerExporter
	if err := cfg.ValidateExport(); err != nil {
		logger.Warn("Sheets export not configured, exporting to memory", "error", err)
		exporter = memory.New()
	} else {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
			Credentials:   cfg.GoogleCredentials(),
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	}

	exportWorker := worker.NewExportWorker(res.Backend, exporter, cfg.ExportInterval)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled, exporting on interval only", "interval", cfg.ExportInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCtx, done := cli.GracefulShutdown(logger, shutdownTimeout, cancel)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return exportWorker.Run(gctx) })
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeTransactionEvents(gctx, exportWorker.HandleEvent)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(sigCtx, done)
	logger.Info("Worker stopped gracefully")
}
