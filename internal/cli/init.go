// Package cli provides the process bootstrap shared by fintrack binaries:
// environment, logging, configuration, store and mirror construction.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/services"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

// newSheetsMirror builds the Google Sheets mirror; tests replace it.
var newSheetsMirror = func(ctx context.Context, spreadsheetID, sheetName string) (services.Mirror, error) {
	return gsheet.NewFromEnv(ctx, spreadsheetID, sheetName)
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger from the configured level and
// format and installs it as the slog default. Unknown levels fall back to warn.
func SetupLogger(level, format string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := log.ParseLevel(level); err == nil {
		cfg.Level = lvl
	}
	if format == "json" {
		cfg.Format = "json"
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration, sets up logging from it and
// validates it. Exits the process on validation failure.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldComponent, log.ComponentConfig,
			log.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore returns the ledger store selected by the configuration.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case config.BackendFile:
		return storage.NewFileStore(cfg.LedgerFile), nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Backend)
	}
}

// InitStore opens the configured store or exits the process on failure.
func InitStore(logger *log.Logger, cfg *config.Config) storage.Store {
	store, err := OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to open ledger store", log.FieldError, err, log.FieldBackend, cfg.Backend)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("Ledger store ready", log.FieldBackend, cfg.Backend)
	return store
}

// InitMirrors connects every configured commit mirror. A mirror that cannot
// be reached is skipped with a warning; the ledger works without it. Mirror
// clients are not tied to ctx cancellation.
func InitMirrors(ctx context.Context, logger *log.Logger, cfg *config.Config) []services.Mirror {
	var mirrors []services.Mirror

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without it", log.FieldError, err)
		} else {
			logger.Info("Initialized AMQP mirror",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			mirrors = append(mirrors, client)
		}
	}

	if cfg.GoogleSpreadsheetID != "" {
		// The client's credentials and transport live for the whole process.
		client, err := newSheetsMirror(context.WithoutCancel(ctx), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Warn("Failed to initialize Google Sheets client, continuing without it", log.FieldError, err)
		} else {
			logger.Info("Initialized Google Sheets mirror", "sheet", cfg.GoogleSheetName)
			mirrors = append(mirrors, client)
		}
	}

	if cfg.MemoryMirror {
		mirrors = append(mirrors, memory.New())
		logger.Info("Initialized memory mirror")
	}

	return mirrors
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM so the
// shell can stop reading and commit before the process exits.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
