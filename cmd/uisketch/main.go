// Package main is the entry point for the uisketch API server.
// It loads configuration, connects to services, wires the job pipeline,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uisketch/internal/ai"
	"uisketch/internal/cache"
	"uisketch/internal/config"
	"uisketch/internal/credits"
	"uisketch/internal/database"
	"uisketch/internal/engine"
	"uisketch/internal/handlers"
	"uisketch/internal/jobs"
	"uisketch/internal/router"
	"uisketch/internal/store"
)

func main() {
	// Structured logger, text output, level debug so job steps are visible.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (backs job step memoization).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	projectStore := store.NewProjectStore(db)
	mockupStore := store.NewMockupStore(db)
	versionStore := store.NewVersionStore(db)

	// Model catalog: public tiers backed by configured providers.
	catalog := ai.NewCatalog(
		ai.ProviderConfig{APIKey: cfg.GoogleAPIKey},
		ai.ProviderConfig{APIKey: cfg.OpenRouterAPIKey},
	)
	slog.Info("ai catalog initialized", "available", catalog.Available())

	// Generation engine and credit ledger.
	eng := engine.New(catalog)
	ledger := credits.NewLedger(userStore, cfg.Credits)

	// Job pipeline: publisher for the API side, runner for the worker side.
	// Both run in this process; the broker decouples them so either side
	// can be scaled out separately.
	publisher := jobs.NewPublisher(cfg.AMQPURL)
	memo := jobs.NewStepStore(valkeyClient)

	runner := jobs.NewRunner(cfg.AMQPURL, cfg.Jobs, memo)
	runner.Register(jobs.QueueGenerationRequested, jobs.NewGenerateHandler(mockupStore, versionStore, eng).Handle)
	runner.Register(jobs.QueueVariationEdit, jobs.NewEditHandler(mockupStore, versionStore, eng).Handle)

	runnerCtx, stopRunner := context.WithCancel(context.Background())
	defer stopRunner()
	runner.Start(runnerCtx)
	slog.Info("job runner started",
		"max_concurrent", cfg.Jobs.MaxConcurrent,
		"max_retries", cfg.Jobs.MaxRetries,
	)

	// HTTP API.
	api := handlers.NewAPI(projectStore, mockupStore, versionStore, ledger, publisher)
	r := router.New(api, cfg.JWTSecret)

	// The API only enqueues work, so write timeouts stay tight; model
	// latency lives in the job pipeline, not in request handlers.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Stop pulling new jobs, then give active requests up to 30 seconds.
	stopRunner()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
