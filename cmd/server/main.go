package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/app"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/config"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/logging"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/scheduler"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	zlog.Logger = log

	if cfg.T212.APIKey == "" {
		log.Warn().Msg("T212_API_KEY is not set, portfolio and dividend endpoints will fail")
	}

	services := app.New(cfg, log)

	// Scheduled refresh; a calculation may take several rate-limited minutes.
	refresher := scheduler.New(services.Forecast, 10*time.Minute, log)
	if err := refresher.Start(cfg.Scheduler.RefreshSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Scheduler.RefreshSchedule).Msg("Invalid refresh schedule")
	}

	router := api.NewRouter(services.Services(refresher), cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("version", version.Version).
			Str("base_currency", cfg.FX.BaseCurrency).
			Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	refresher.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
