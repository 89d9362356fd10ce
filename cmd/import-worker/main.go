package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"findash/internal/amqp"
	"findash/internal/config"
	applog "findash/internal/log"
	"findash/internal/services"
	ports "findash/internal/sheets"
	gsheet "findash/internal/sheets/google"
	mem "findash/internal/sheets/memory"
	"findash/internal/storage"
)

// The worker consumes queued import requests and runs the full-refresh
// import out of band, so a slow spreadsheet fetch never blocks the API.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent("import-worker")
	applog.SetDefault(logger)

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the import worker")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var source ports.RowSource
	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		source = cli
	default:
		store := mem.New()
		store.SetSheet(cfg.TransactionSheetName, nil)
		source = store
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle := func(msg *amqp.ImportRequestMessage) error {
		sheet := msg.SheetName
		if sheet == "" {
			sheet = cfg.TransactionSheetName
		}
		importer := services.NewImportService(source, repo, cfg.SheetID, sheet)
		res, err := importer.Run(ctx)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "Queued import finished",
			"sheet", sheet,
			"requested_by", msg.RequestedBy,
			"rows_imported", res.RowsImported)
		return nil
	}

	// Liveness probe for the orchestrator; the worker has no other
	// HTTP surface.
	health := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeImportRequests(gctx, handle)
	})

	g.Go(func() error {
		if err := health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return health.Shutdown(shutdownCtx)
	})

	logger.Info("Import worker started", "queue", cfg.AMQPQueue, "backend", cfg.DataBackend)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
