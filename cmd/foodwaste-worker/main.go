package main

import (
	"os"

	"foodwaste/internal/amqp"
	"foodwaste/internal/backend"
	"foodwaste/internal/cli"
	"foodwaste/internal/log"
	"foodwaste/internal/sheets"
	gsheet "foodwaste/internal/sheets/google"
	"foodwaste/internal/sheets/memory"
	"foodwaste/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentWorker, nil)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentWorker, nil)

	logger.Info("Starting foodwaste-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker", log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	factory := backend.NewFactory(logger, nil)
	store, err := factory.OpenStore(ctx, cfg, nil)
	if err != nil {
		logger.Error("Failed to open entry store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to this process; reconciliation only sees the seed file")
	}

	var mirror sheets.EntryMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		mirror = memory.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewMirrorWorker(store, mirror, cfg.MirrorBatchSize)
	if err := w.Run(ctx, amqpClient, cfg.MirrorInterval); err != nil && ctx.Err() == nil {
		logger.Error("Mirror worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
