package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/app"
	"github.com/urmzd/hubpanel/pkg/config"
	panelmcp "github.com/urmzd/hubpanel/pkg/mcp"
)

func main() {
	// stdout is the MCP transport
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

	a, err := app.Open(context.Background(), app.Options{DBPath: *dbPath, Profile: *profile, Config: cfg})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start panel")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	mcpServer := panelmcp.NewServer(a.Panel)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
