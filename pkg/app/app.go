// Package app wires the database, process config and hub gateway into a
// running panel. Both binaries start through Open.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/config"
	"github.com/urmzd/hubpanel/pkg/db"
	"github.com/urmzd/hubpanel/pkg/hub"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// Options selects the database and profile to start from.
type Options struct {
	DBPath  string
	Profile string
	Config  *config.Config
}

// App is a started panel and the resources backing it.
type App struct {
	DB      *db.DB
	Profile *db.Config
	Panel   *panel.Panel
	HubURL  string
}

// Open prepares the database, resolves settings and starts the panel.
// A missing hub URL yields a panel on the null gateway.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
	}

	path := opts.DBPath
	if path == "" {
		path = cfg.DBPath
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	a, err := start(ctx, database, opts.Profile, cfg)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

func start(ctx context.Context, database *db.DB, profile string, cfg *config.Config) (*App, error) {
	if err := database.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("prepare database: %w", err)
	}
	if profile != "" {
		if _, err := database.UseProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("select profile %q: %w", profile, err)
		}
	}

	active, err := database.ActiveConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	hubURL := active.Hub.HubURL
	if cfg.HubURL != "" {
		hubURL = cfg.HubURL
	}
	settings := cfg.Apply(active.Hub.PanelSettings())

	log.Info().
		Str("profile", active.Profile.Name).
		Str("timezone", active.Timezone()).
		Str("hub_url", hubURL).
		Str("map_url", settings.MapURL).
		Msg("Configuration loaded")

	var gw hub.Gateway
	if hubURL == "" {
		log.Warn().Msg("No hub URL configured, using null gateway")
		gw = hub.NewNullGateway()
	} else {
		gw = hub.NewClient(hubURL)
	}

	p := panel.New(gw,
		panel.WithSettings(settings),
		panel.WithStateStore(database.ViewStates(active.Profile.ID)),
	)
	p.Start(ctx)

	return &App{
		DB:      database,
		Profile: active,
		Panel:   p,
		HubURL:  hubURL,
	}, nil
}

// ListenAddress is the configured override or the profile's API server.
func (a *App) ListenAddress(cfg *config.Config) string {
	if cfg != nil && cfg.Listen != "" {
		return cfg.Listen
	}
	return a.Profile.APIAddress()
}

// Close stops the panel and closes the database.
func (a *App) Close() error {
	a.Panel.Close()
	return a.DB.Close()
}
