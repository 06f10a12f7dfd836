// Package config loads process-level overrides from the environment and an
// optional config file. Values left unset fall back to the settings stored in
// the database.
package config

import (
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/urmzd/hubpanel/pkg/panel"
)

// EnvPrefix is prepended to every environment variable, e.g. HUBPANEL_HUB_URL.
const EnvPrefix = "hubpanel"

// Config holds overrides. Zero values mean "not overridden".
type Config struct {
	DBPath   string `mapstructure:"db_path"`
	Listen   string `mapstructure:"listen"`
	LogLevel string `mapstructure:"log_level"`

	HubURL          string        `mapstructure:"hub_url"`
	MapURL          string        `mapstructure:"map_url"`
	LogLines        int           `mapstructure:"log_lines"`
	LogPollInterval time.Duration `mapstructure:"log_poll_interval"`
	PairingWindow   time.Duration `mapstructure:"pairing_window"`
	RefreshDelay    time.Duration `mapstructure:"refresh_delay"`
}

// Load reads HUBPANEL_* variables and, when CONFIG_FILE names an existing
// file, that file.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			log.Info().Str("file", cfgFile).Msg("Using config file")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AutomaticEnv only resolves keys viper already knows about, so every key
// gets a default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("listen", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("hub_url", "")
	v.SetDefault("map_url", "")
	v.SetDefault("log_lines", 0)
	v.SetDefault("log_poll_interval", time.Duration(0))
	v.SetDefault("pairing_window", time.Duration(0))
	v.SetDefault("refresh_delay", time.Duration(0))
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Apply overlays the non-zero overrides on s.
func (c *Config) Apply(s panel.Settings) panel.Settings {
	if c.MapURL != "" {
		s.MapURL = c.MapURL
	}
	if c.LogLines > 0 {
		s.LogLines = c.LogLines
	}
	if c.LogPollInterval > 0 {
		s.LogPollInterval = c.LogPollInterval
	}
	if c.PairingWindow > 0 {
		s.PairingWindow = c.PairingWindow
	}
	if c.RefreshDelay > 0 {
		s.RefreshDelay = c.RefreshDelay
	}
	return s
}
