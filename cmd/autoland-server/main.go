package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ntdat247/Autoland-Monitoring/internal/api"
	"github.com/ntdat247/Autoland-Monitoring/internal/config"
	"github.com/ntdat247/Autoland-Monitoring/internal/fleet"
	"github.com/ntdat247/Autoland-Monitoring/internal/ingest"
	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/pipeline"
	"github.com/ntdat247/Autoland-Monitoring/internal/storage/sqlite"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.IsDebug() {
		log.Debug("Starting with configuration", logger.String("config", cfg.String()))
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tracker := fleet.NewTracker(cfg.CycleDays, cfg.DueSoonDays)

	reportStore, err := sqlite.NewReportStore(db, log)
	if err != nil {
		return err
	}
	fleetStore, err := sqlite.NewFleetStore(db, tracker, log)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessor(cfg.MaxFileSize)

	router := api.NewRouter(cfg, log, processor, reportStore, fleetStore)
	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: router.Routes(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gmail ingestion is optional; without credentials the server is
	// upload-only.
	if cfg.GmailIngestEnabled() {
		ingestService, err := ingest.NewService(ctx, cfg, log, processor, reportStore, fleetStore)
		if err != nil {
			return fmt.Errorf("failed to start Gmail ingestion: %w", err)
		}
		go ingestService.Run(ctx)
	} else {
		log.Info("Gmail ingestion disabled, no credentials configured")
	}

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", logger.String("address", cfg.Address()))
		serverErrCh <- server.ListenAndServe()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-signalCh:
		log.Info("Received signal, shutting down", logger.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}

	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	log.Info("Server stopped")
	return nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Autoland Monitoring Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
