package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/varoOP/movielog/internal/domain"
)

// Load loads configuration from multiple sources:
// 1. Config file (config.yaml, optional)
// 2. Environment variables (MOVIELOG_*)
func Load() (*domain.Config, error) {
	cfg := &domain.Config{}

	cfg.TmdbApiToken = viper.GetString("tmdb_api_token")
	cfg.SessionSecret = viper.GetString("session_secret")
	cfg.DataDir = viper.GetString("data_dir")
	cfg.ListenAddr = viper.GetString("listen_addr")
	cfg.DiscordWebhookURL = viper.GetString("discord_webhook_url")

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	// Validate required fields
	if cfg.TmdbApiToken == "" {
		return nil, fmt.Errorf("tmdb_api_token is required (set via config.yaml or MOVIELOG_TMDB_API_TOKEN environment variable)")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("session_secret is required (set via config.yaml or MOVIELOG_SESSION_SECRET environment variable)")
	}

	return cfg, nil
}
