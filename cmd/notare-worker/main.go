package main

import (
	"context"
	"errors"
	"os"
	"time"

	"notare/internal/amqp"
	"notare/internal/cli"
	"notare/internal/config"
	"notare/internal/log"
	"notare/internal/services"
	gsheet "notare/internal/sheets/google"
	"notare/internal/worker"
)

// requireSQLite rejects the memory backend: the worker reads records back
// from the store the web process wrote them to.
func requireSQLite(c *config.Config) error {
	if c.DataBackend != "sqlite" {
		return errors.New("the backup worker needs DATA_BACKEND=sqlite")
	}
	return nil
}

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker, (*config.Config).ValidateBackup, requireSQLite)
	logger.Info("Starting notare-worker")

	// The web process owns seeding.
	cfg.SeedDemo, cfg.SeedFile = false, ""

	ctx := context.Background()
	store := cli.OpenBackend(ctx, logger, cfg)
	defer store.Cleanup()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	backup := worker.NewBackupWorker(amqpClient, services.NewBackupProcessor(store.Store, sheetsClient))

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		logger.Info("Shutting down worker...")
		if err := backup.Stop(ctx); err != nil {
			logger.Error("Backup worker stopped with error", log.FieldError, err)
		}
	})

	if err := backup.Start(shutdownCtx); err != nil {
		logger.Error("Failed to start backup worker", log.FieldError, err)
		os.Exit(1)
	}

	select {
	case <-shutdownCtx.Done():
		<-done
	case <-backup.Done():
		if err := backup.Err(); err != nil {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}
	logger.Info("Worker shutdown complete")
}
