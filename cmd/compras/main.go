package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"compras/internal/amqp"
	"compras/internal/config"
	apphttp "compras/internal/http"
	"compras/internal/log"
	"compras/internal/session"
	"compras/internal/source"
	gsheet "compras/internal/source/google"
	"compras/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		repo          *storage.SQLiteRepository
		defaultSource source.RowReader
	)

	switch cfg.DataSource {
	case "csv", "xlsx":
		reader, err := source.OpenFile(cfg.SourcePath)
		if err != nil {
			logger.Error("Failed to open source file", log.FieldError, err, "path", cfg.SourcePath)
			os.Exit(1)
		}
		defaultSource = reader
	case "sheets":
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleReadRange,
			logger.WithComponent(log.ComponentSource))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		defaultSource = client
	default: // staging
		r, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		repo = r
		defer repo.Close()
		defaultSource = source.NewStaging(repo, "")
	}

	var publisher apphttp.ImportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Import queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	var sessionOpts []session.Option
	if cfg.StrictNormalize {
		sessionOpts = append(sessionOpts, session.WithStrictNormalization())
	}
	sess := session.New(sessionOpts...)

	// Best-effort initial load; clients can POST /api/load later.
	if rows, err := defaultSource.ReadRows(ctx); err != nil {
		logger.Warn("Initial dataset load failed", log.FieldError, err, log.FieldSource, cfg.DataSource)
	} else {
		summary := sess.Load(rows)
		logger.Info("Initial dataset loaded",
			log.FieldSource, cfg.DataSource,
			log.FieldRows, summary.Records,
			log.FieldDropped, summary.DroppedNoDate+summary.DroppedNumeric)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Session:       sess,
		DefaultSource: defaultSource,
		Repo:          repo,
		Publisher:     publisher,
		Logger:        logger.WithComponent(log.ComponentHTTP),
		CacheTTL:      cfg.CacheTTL,
		CacheEntries:  cfg.CacheEntries,
		RecordLimit:   cfg.RecordLimit,
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting compras server", "port", cfg.Port, log.FieldSource, cfg.DataSource)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
