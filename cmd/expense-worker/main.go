package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"expensemcp/internal/amqp"
	"expensemcp/internal/cli"
	"expensemcp/internal/config"
	"expensemcp/internal/log"
	gsheet "expensemcp/internal/sheets/google"
	"expensemcp/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting expense-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	sheetsClient, err := gsheet.NewClient(ctx, gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(sheetsClient, logger)

	err = amqpClient.ConsumeExpenseRecorded(ctx, mirror.HandleRecorded)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("message consumption: %w", err)
	}
	return nil
}
