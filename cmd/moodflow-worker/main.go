package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moodflow/internal/backend"
	"moodflow/internal/cli"
	"moodflow/internal/config"
	applog "moodflow/internal/log"
	"moodflow/internal/sheets"
	gsheet "moodflow/internal/sheets/google"
	memsheet "moodflow/internal/sheets/memory"
	"moodflow/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, logger := cli.MustBootstrap(applog.ComponentWorker)
	logger.Info("Starting moodflow-worker")

	// The worker reads rows written by the server process, so it needs a
	// shared store.
	if cfg.DataBackend != config.BackendSQLite {
		logger.Error("moodflow-worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	res, err := cli.InitBackend(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}

	exporter, err := newExporter(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	w := worker.NewExportWorker(res.Service, res.Tracker, exporter, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func(context.Context) {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	})

	logger.Info("Performing startup sync check...")
	if err := w.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	if err := run(ctx, logger, w, res, cfg.SyncInterval); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// run blocks until ctx is cancelled or one of the loops fails.
func run(ctx context.Context, logger *applog.Logger, w *worker.ExportWorker, res *backend.BackendResult, interval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.RunSweeper(gctx, interval)
	})

	if res.AMQP != nil {
		g.Go(func() error {
			err := res.AMQP.ConsumeMoodEvents(gctx, w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep only", "interval", interval)
	}

	return g.Wait()
}

func newExporter(ctx context.Context, logger *applog.Logger, cfg *config.Config) (sheets.EntryExporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to an in-process sheet")
		return memsheet.New(), nil
	}

	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureHeader(ctx); err != nil {
		logger.Warn("Failed to write sheet header", applog.FieldError, err)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)
	return client, nil
}
