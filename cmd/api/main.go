package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"explorer-backend/infrastructure/config"
	"explorer-backend/infrastructure/di"
	"explorer-backend/interfaces/http/rest"
)

func main() {
	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Populate the universe before serving. A fully failed bootstrap still
	// leaves a ready service with an empty universe.
	report := container.Engine.Bootstrap(ctx)
	if report.Failed() > 0 {
		container.Logger.Warn("Bootstrap completed with failures",
			zap.Int("failed", report.Failed()),
		)
	}

	// Seed the insight list so the dashboard has content immediately
	if _, err := container.Engine.Explore(ctx); err != nil {
		container.Logger.Warn("Initial exploration failed", zap.Error(err))
	}

	// Start the single-writer run loop
	container.Runner.Start(ctx)

	// Watch the config file for interval changes, when one is in use
	watcher, err := config.NewWatcher(cfg, container.Dynamic, container.Logger)
	if err != nil {
		container.Logger.Warn("Config watcher unavailable", zap.Error(err))
	} else if watcher != nil {
		watcher.Start()
		defer watcher.Stop()
	}

	// Create router
	router := rest.NewRouter(
		cfg,
		container.QueryBus,
		container.Runner,
		container.Metrics,
		container.Logger,
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	// Stop the run loop and wait for it to drain
	cancel()
	container.Runner.Wait()

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
