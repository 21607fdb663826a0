package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/isdelr/accounts-be/internal/api"
	"github.com/isdelr/accounts-be/internal/auth"
	"github.com/isdelr/accounts-be/internal/config"
	"github.com/isdelr/accounts-be/internal/database"
	"github.com/isdelr/accounts-be/internal/logger"
	"github.com/isdelr/accounts-be/internal/monitoring"
	"github.com/isdelr/accounts-be/internal/services"
	"github.com/isdelr/accounts-be/internal/validation"
	"github.com/isdelr/accounts-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	// Set up the user store
	db := database.New()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(cfg.EventHistory, hub)
	userService := services.NewUserService(db, auth.NewBcryptHasher(cfg.BcryptCost), validation.New(), eventService)

	// Set up and run the periodic stats reporter
	proc := monitoring.NewProcessInfo()
	statsReporter, err := monitoring.NewStatsReporter(cfg.StatsSchedule, db, eventService, proc)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stats reporter")
	}
	statsReporter.Start()

	router := api.NewRouter(userService, eventService, hub, proc, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statsReporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
