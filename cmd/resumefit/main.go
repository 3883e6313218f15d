package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumefit/internal/cli"
	"resumefit/internal/config"
	"resumefit/internal/errors"
	"resumefit/internal/observability"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Resolve the API key from Vault when enabled
	vaultClient, err := config.NewVaultClient(cfg.Vault, logger)
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault")
		os.Exit(1)
	}
	if err := cfg.ApplyAPIKey(vaultClient); err != nil {
		logger.LogError(err, "Failed to load API key from Vault")
		os.Exit(1)
	}

	// Set up tracing and metrics
	obs, err := observability.NewManager(cfg, cli.Version)
	if err != nil {
		logger.LogError(err, "Failed to initialize observability")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Observability shutdown failed", "error", err.Error())
		}
	}()

	// Reload prompt overrides and the inference table when they change on disk
	watcher, err := config.NewPromptWatcher(cfg, nil, logger)
	if err != nil {
		logger.LogError(err, "Failed to set up prompt file watcher")
		os.Exit(1)
	}
	if watcher != nil {
		go watcher.Start(ctx)
	}

	// Log startup
	logger.Info("Starting resumefit",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider)

	// Execute command with cancellable context
	if err := cli.Execute(ctx, cfg, logger, obs); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}
