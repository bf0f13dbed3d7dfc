package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/filmshelf/internal/config"
	"github.com/user/filmshelf/internal/library"
	"github.com/user/filmshelf/internal/server"
	"github.com/user/filmshelf/internal/store"
	"github.com/user/filmshelf/internal/tmdb"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

func main() {
	// Initialize structured JSON logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	// Allow local development secrets to live in a .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Initialize record store
	sqlStore, err := store.NewSQLStore(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("Database connection established")

	// Initialize TMDB client
	tmdbClient, err := tmdb.NewClient(&tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Timeout:      cfg.TMDB.Timeout,
		RateLimit:    cfg.TMDB.RateLimit,
		MaxRetries:   cfg.TMDB.MaxRetries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create TMDB client")
	}
	log.Info().Msg("TMDB client initialized")

	// Initialize collection service
	service := library.NewService(sqlStore, tmdbClient)
	log.Info().Msg("Collection service initialized")

	// Initialize HTTP server
	httpServer := server.NewServer(service, sqlStore, cfg.Server.SecretKey)

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in goroutine
	go func() {
		if err := httpServer.Start(cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	log.Info().Msg("Filmshelf started successfully")

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown sequence
	log.Info().Msg("Starting graceful shutdown...")

	// 1. Stop accepting and drain in-flight requests
	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	// 2. Close database connection pool
	if err := sqlStore.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("Database connection closed")
	}

	log.Info().Msg("Graceful shutdown completed")
}
