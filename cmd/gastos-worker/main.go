package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gastos/internal/backend"
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/sheets/memory"
	"gastos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	backendCfg.RequireEvents = true

	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}

	var exporter sheets.MovementExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromConfig(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			_ = result.Cleanup()
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		exporter = memory.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
	}

	w := worker.NewExportWorker(result.Store.Queries(), exporter, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := w.Stop(ctx); err != nil {
			logger.Error("Worker shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Performing startup resync...")
	if n, err := w.Resync(ctx); err != nil {
		// keep consuming, events will repair individual rows
		logger.Error("Startup resync failed", log.FieldError, err, "rows", n)
	}

	if err := w.Start(ctx, result.Events); err != nil {
		logger.Error("Failed to start export worker", log.FieldError, err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-w.Done():
		if err := w.Err(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Event consumption ended", log.FieldError, err)
			os.Exit(1)
		}
	}

	cli.WaitForShutdown(ctx, done)
	stats := w.Stats()
	logger.Info("Worker stopped",
		"exported", stats.Exported,
		"removed", stats.Removed,
		"ignored", stats.Ignored,
		"failed", stats.Failed)
}
