package main

import (
	"context"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/shell"
)

func main() {
	// Load .env file for local development
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig()
	logger.Info("Starting fintrack",
		log.FieldOperation, log.OpStartup,
		log.FieldBackend, cfg.Backend)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	store := cli.InitStore(logger, cfg)
	// Mirror clients outlive the signal context so the final commit can
	// still reach them after an interrupt.
	mirrors := cli.InitMirrors(context.Background(), logger, cfg)

	svc := services.NewLedgerService(store, cfg.MirrorTimeout, mirrors...)
	if _, err := svc.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "could not load ledger: %v\n", err)
		shutdown(logger, svc)
		os.Exit(1)
	}

	runErr := shell.New(svc, os.Stdin, os.Stdout, logger).Run(ctx)
	shutdown(logger, svc)

	if runErr != nil {
		logger.Error("Session ended with error", log.FieldError, runErr)
		os.Exit(1)
	}
}

func shutdown(logger *log.Logger, svc *services.LedgerService) {
	if err := svc.Close(); err != nil {
		logger.Warn("Failed to close ledger service", log.FieldError, err)
	}
	logger.Info("fintrack stopped", log.FieldOperation, log.OpShutdown)
}
