package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sunclx/seiri/src/features/config"
	"github.com/sunclx/seiri/src/features/dedup"
	"github.com/sunclx/seiri/src/features/hosting"
	"github.com/sunclx/seiri/src/features/ingesting"
	"github.com/sunclx/seiri/src/features/logging"
	"github.com/sunclx/seiri/src/features/notify"
	"github.com/sunclx/seiri/src/features/querying"
	"github.com/sunclx/seiri/src/infra/database"
	"github.com/sunclx/seiri/src/infra/files"
	"github.com/sunclx/seiri/src/infra/tag"
	"github.com/sunclx/seiri/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	if err := cfgManager.EnsureDirectories(); err != nil {
		log.Fatalf("failed to prepare library directories: %v", err)
	}

	// Create the catalog database
	catalog, err := database.NewSqliteCatalog(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	defer catalog.Close()

	// Optional ingest notifier
	var notifier ingesting.Notifier
	if cfgManager.Get().Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfgManager)
		if err != nil {
			slog.Error("Failed to initialize Telegram notifier", "error", err)
		} else {
			notifier = tg
		}
	}

	// Create the organizing service
	tagReader := tag.NewTagReader()
	fileOrganizer := files.NewFileOrganizer(cfgManager)
	detector := dedup.NewDetector(cfgManager.Get().Ingest.DurationTolerance)
	ingestService := ingesting.NewService(catalog, tagReader, detector, fileOrganizer, cfgManager, notifier)

	// Create the querying service
	queryService := querying.NewService(catalog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repair any crash leftovers before accepting new work
	if _, err := ingestService.Reconcile(ctx); err != nil {
		slog.Error("Startup reconciliation failed", "error", err)
	}

	// Start the staging watcher and the ingestion workers
	events := make(chan ingesting.FileEvent, 256)
	stagingWatcher, err := watcher.NewWatcher(events, cfgManager.Get().Ingest.StableSeconds)
	if err != nil {
		log.Fatalf("failed to create staging watcher: %v", err)
	}
	if err := stagingWatcher.Start(ctx, cfgManager.Get().EffectiveStagingPath()); err != nil {
		log.Fatalf("failed to start staging watcher: %v", err)
	}

	workers := ingesting.NewWorkers(ingestService, events, cfgManager.Get().Ingest.Workers)
	workers.Start(ctx)

	// Sweep files that arrived while the process was down
	go func() {
		if _, err := ingestService.ScanStaging(ctx); err != nil {
			slog.Error("Startup staging scan failed", "error", err)
		}
	}()

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, catalog, queryService, ingestService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()
	slog.Info("Seiri started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down...")

	stagingWatcher.Stop()
	cancel()
	workers.Wait()

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
