package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cardkeep/cardkeep-be/internal/api"
	"github.com/cardkeep/cardkeep-be/internal/auth"
	"github.com/cardkeep/cardkeep-be/internal/config"
	"github.com/cardkeep/cardkeep-be/internal/database"
	"github.com/cardkeep/cardkeep-be/internal/logger"
	"github.com/cardkeep/cardkeep-be/internal/monitoring"
	"github.com/cardkeep/cardkeep-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database. An unreachable store is fatal; we never serve
	// degraded responses.
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	tokenService := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	userService := services.NewUserService(db)
	cardService := services.NewCardService(db)

	// Set up and run the background session pruner
	pruner, err := monitoring.NewSessionPruner(userService, cfg.PruneSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up session pruner")
	}
	go pruner.Run()

	// Set up router
	router := api.NewRouter(tokenService, userService, cardService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
