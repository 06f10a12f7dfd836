package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/api"
	"github.com/urmzd/hubpanel/pkg/app"
	"github.com/urmzd/hubpanel/pkg/config"

	_ "github.com/urmzd/hubpanel/docs"
)

// @title           Hub Panel API
// @version         1.0
// @description     Control panel for a home automation hub

// @host      localhost:3000
// @BasePath  /api/v1
// @schemes   http

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/hubpanel/hubpanel.db)")
	profile := flag.String("profile", "", "Profile to activate, created on first use")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, app.Options{DBPath: *dbPath, Profile: *profile, Config: cfg})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start panel")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	router, err := api.NewRouter(a.Panel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	addr := a.ListenAddress(cfg)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("Starting panel server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
