// Package provider implements the remote callers behind the query service:
// a direct API-Football client and a serverless functions proxy client.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/pkg/football"
)

const (
	DefaultBaseURL = "https://v3.football.api-sports.io"
	APIHost        = "v3.football.api-sports.io"

	// ErrMissingKey is reported in the envelope when no API key is configured
	ErrMissingKey = "FOOTBALL_API_KEY not found in secrets"
)

// mockPayload is served by keyless functions that degrade to empty data
var mockPayload = []byte(`{"response":[],"results":0,"paging":{"current":1,"total":1}}`)

// endpoint describes how a remote function maps onto the provider API
type endpoint struct {
	path     string
	params   []string
	defaults map[string]string
	// keyless functions answer with an empty payload instead of an error
	keyless bool
}

var leagueSeasonDefaults = map[string]string{
	"league": football.DefaultLeague,
	"season": football.DefaultSeason,
}

var functions = map[string]endpoint{
	"get-fixtures": {
		path:     "/fixtures",
		params:   []string{"league", "season"},
		defaults: leagueSeasonDefaults,
	},
	// the free plan has no live=all filter, live status is filtered locally
	"get-live-scores": {
		path:     "/fixtures",
		params:   []string{"league", "season"},
		defaults: leagueSeasonDefaults,
		keyless:  true,
	},
	"get-leagues": {
		path:   "/leagues",
		params: []string{"country", "season"},
		defaults: map[string]string{
			"country": football.DefaultCountry,
			"season":  football.DefaultSeason,
		},
	},
	"get-standings": {
		path:     "/standings",
		params:   []string{"league", "season"},
		defaults: leagueSeasonDefaults,
		keyless:  true,
	},
}

// Functions lists the remote function names the callers understand
func Functions() []string {
	return []string{"get-fixtures", "get-live-scores", "get-leagues", "get-standings"}
}

type base struct {
	http    *http.Client
	baseURL *url.URL
	log     zerolog.Logger
}

type Option func(*base)

func WithHTTPClient(h *http.Client) Option {
	return func(b *base) { b.http = h }
}
func WithBaseURL(raw string) Option {
	return func(b *base) {
		if u, err := url.Parse(raw); err == nil && raw != "" {
			b.baseURL = u
		}
	}
}
func WithLogger(l zerolog.Logger) Option {
	return func(b *base) { b.log = l }
}

// Client calls API-Football directly
type Client struct {
	base
	apiKey string
}

var _ requests.RemoteCaller = (*Client)(nil)

// New creates a direct client. An empty apiKey is allowed; calls then
// behave as the hosted functions do without their secret.
func New(apiKey string, opts ...Option) *Client {
	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		base: base{
			http:    &http.Client{Timeout: 20 * time.Second},
			baseURL: u,
			log:     zerolog.Nop(),
		},
		apiKey: apiKey,
	}
	for _, o := range opts {
		o(&c.base)
	}
	c.log = c.log.With().Str("component", "provider").Logger()
	return c
}

func (c *Client) newReq(ctx context.Context, ep endpoint, params map[string]string) (*http.Request, string, error) {
	u := *c.baseURL
	u.Path = path.Join(u.Path, ep.path)
	q := u.Query()
	for _, name := range ep.params {
		v := params[name]
		if v == "" {
			v = ep.defaults[name]
		}
		q.Set(name, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	id := uuid.NewString()
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", APIHost)
	req.Header.Set("X-Request-ID", id)
	req.Header.Set("Accept", "application/json")
	return req, id, nil
}

// Call runs one remote function against the provider API
func (c *Client) Call(ctx context.Context, function string, params map[string]string) (requests.Envelope, error) {
	ep, ok := functions[function]
	if !ok {
		return requests.Envelope{Error: fmt.Sprintf("unknown function %q", function)}, nil
	}
	if c.apiKey == "" {
		if ep.keyless {
			c.log.Warn().Str("function", function).Msg("FOOTBALL_API_KEY not found, returning mock data")
			return requests.Envelope{Data: append([]byte(nil), mockPayload...)}, nil
		}
		return requests.Envelope{Error: ErrMissingKey}, nil
	}

	req, id, err := c.newReq(ctx, ep, params)
	if err != nil {
		return requests.Envelope{}, err
	}
	log := c.log.With().Str("function", function).Str("request_id", id).Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return requests.Envelope{}, fmt.Errorf("GET %s: %w", ep.path, err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("path", ep.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Provider responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return requests.Envelope{Error: fmt.Sprintf("API call failed: %d", resp.StatusCode)}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requests.Envelope{}, fmt.Errorf("read %s: %w", ep.path, err)
	}
	if len(body) == 0 {
		return requests.Envelope{}, errors.New("empty response body")
	}
	return requests.Envelope{Data: body}, nil
}
