package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-advisor/internal/api"
	"github.com/dvloznov/finance-advisor/internal/app"
	"github.com/dvloznov/finance-advisor/internal/config"
	"github.com/dvloznov/finance-advisor/internal/logger"
)

func main() {
	cfg := config.Load()

	// Command-line flags override the environment
	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	backend := flag.String("store", cfg.StoreBackend, "Storage backend: memory, mongo or bigquery (or set STORE_BACKEND env)")
	flag.Parse()
	cfg.Port = *port
	cfg.StoreBackend = *backend

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close application")
		}
	}()

	handler := api.NewRouter(api.Deps{
		Finance:        application.Finance,
		Accounts:       application.Accounts,
		Tokens:         application.Tokens,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
