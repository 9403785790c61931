// Package config handles application configuration from environment variables
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/briangreenhill/matchday/internal/validation"
)

// Config holds all application configuration
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Football  FootballConfig
	Functions FunctionsConfig
	Cache     CacheConfig
	Live      LiveConfig

	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"20s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// FootballConfig holds the direct API-Football settings
type FootballConfig struct {
	APIKey        string `env:"FOOTBALL_API_KEY"`
	BaseURL       string `env:"FOOTBALL_API_BASE_URL" envDefault:"https://v3.football.api-sports.io"`
	DefaultLeague string `env:"DEFAULT_LEAGUE" envDefault:"39"`
	DefaultSeason string `env:"DEFAULT_SEASON" envDefault:"2023"`
}

// FunctionsConfig holds the hosted proxy functions settings. When URL is
// set the proxy is used instead of calling the provider directly.
type FunctionsConfig struct {
	URL     string `env:"FUNCTIONS_URL"`
	AnonKey string `env:"FUNCTIONS_ANON_KEY"`
}

// CacheConfig holds entry lifetimes and the cleanup schedule
type CacheConfig struct {
	LiveTTL         time.Duration `env:"LIVE_TTL" envDefault:"30s"`
	DefaultTTL      time.Duration `env:"DEFAULT_TTL" envDefault:"5m"`
	CleanupSchedule string        `env:"CACHE_CLEANUP_SCHEDULE" envDefault:"@every 10m"`

	// WarmSchedule prefetches WarmLeagues for the default season. Empty
	// disables warming.
	WarmSchedule string   `env:"CACHE_WARM_SCHEDULE"`
	WarmLeagues  []string `env:"CACHE_WARM_LEAGUES" envDefault:"39,140,135,78,61" envSeparator:","`
}

// LiveConfig holds the live score polling settings
type LiveConfig struct {
	PollInterval time.Duration `env:"LIVE_POLL_INTERVAL" envDefault:"30s"`
}

// Load reads configuration from the environment, after loading a .env
// file when one exists
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(nil)
}

// load parses environ, or the process environment when environ is nil
func load(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// HasAPIKey returns true if the provider key is configured
func (c *Config) HasAPIKey() bool {
	return c.Football.APIKey != ""
}

// UsesFunctions returns true if queries go through the hosted functions
func (c *Config) UsesFunctions() bool {
	return c.Functions.URL != ""
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1-65535, got %d", c.Port))
	}
	if !validation.ValidLeagueID(c.Football.DefaultLeague) {
		errs = append(errs, fmt.Errorf("DEFAULT_LEAGUE must be a positive numeric id, got %q", c.Football.DefaultLeague))
	}
	if !validation.ValidSeason(c.Football.DefaultSeason, time.Now()) {
		errs = append(errs, fmt.Errorf("DEFAULT_SEASON must be a year from 2000 to next year, got %q", c.Football.DefaultSeason))
	}
	for name, d := range map[string]time.Duration{
		"HTTP_TIMEOUT":       c.HTTPTimeout,
		"LIVE_TTL":           c.Cache.LiveTTL,
		"DEFAULT_TTL":        c.Cache.DefaultTTL,
		"LIVE_POLL_INTERVAL": c.Live.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.Cache.CleanupSchedule == "" {
		errs = append(errs, errors.New("CACHE_CLEANUP_SCHEDULE is required"))
	}
	if c.Cache.WarmSchedule != "" {
		for _, id := range c.Cache.WarmLeagues {
			if !validation.ValidLeagueID(id) {
				errs = append(errs, fmt.Errorf("CACHE_WARM_LEAGUES contains invalid league id %q", id))
			}
		}
	}
	return errors.Join(errs...)
}
