// Command compras-import stages a spreadsheet file into the SQLite
// staging database, either directly or by queueing it for the worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"compras/internal/amqp"
	"compras/internal/config"
	"compras/internal/log"
	"compras/internal/services"
	"compras/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		path    = flag.String("file", "", "spreadsheet file to import (.csv, .xlsx)")
		name    = flag.String("source", "", "dataset name (default: file name without extension)")
		enqueue = flag.Bool("enqueue", false, "queue the import over AMQP instead of staging directly")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: compras-import -file <path> [-source <name>] [-enqueue]")
		os.Exit(2)
	}

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentImport)
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *enqueue {
		if cfg.AMQPURL == "" {
			logger.Error("AMQP_URL is required with -enqueue")
			os.Exit(1)
		}
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		if err := client.PublishImportRequest(ctx, *path, *name); err != nil {
			logger.Error("Failed to queue import", log.FieldError, err, "path", *path)
			os.Exit(1)
		}
		logger.Info("Import queued", "path", *path, log.FieldSource, *name)
		return
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Direct imports still announce the dataset when a broker is
	// configured, so running API instances can refresh.
	var notifier services.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, skipping staged notification", log.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	importer := services.NewImportService(repo, notifier, logger)
	result, err := importer.ImportFile(ctx, *path, *name)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, "path", *path)
		os.Exit(1)
	}
	logger.Info("Import completed", log.FieldSource, result.Source, log.FieldRows, result.Rows)
}
