package provider

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/internal/config"
	"github.com/briangreenhill/matchday/internal/requests"
)

// FromConfig picks the hosted functions when configured and the direct
// provider client otherwise
func FromConfig(cfg *config.Config, log zerolog.Logger) (requests.RemoteCaller, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	if cfg.UsesFunctions() {
		return NewFunctions(cfg.Functions.URL, cfg.Functions.AnonKey,
			WithHTTPClient(httpClient),
			WithLogger(log),
		)
	}
	if !cfg.HasAPIKey() {
		log.Warn().Msg("FOOTBALL_API_KEY not set, fixtures and leagues will report the service as not configured")
	}
	return New(cfg.Football.APIKey,
		WithBaseURL(cfg.Football.BaseURL),
		WithHTTPClient(httpClient),
		WithLogger(log),
	), nil
}
