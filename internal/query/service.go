// Package query is the data access facade used by view code. It combines
// the cache store, the request coordinator and the validators, and turns
// every outcome into a Result.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/cache"
	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/internal/validation"
	"github.com/briangreenhill/matchday/pkg/football"
)

// Remote function names
const (
	FnFixtures   = "get-fixtures"
	FnLiveScores = "get-live-scores"
	FnLeagues    = "get-leagues"
	FnStandings  = "get-standings"
)

// Kinds accepted by Invalidate
const (
	KindFixtures  = "fixtures"
	KindLive      = "live"
	KindLeagues   = "leagues"
	KindStandings = "standings"
)

const (
	DefaultLiveTTL = 30 * time.Second
	DefaultTTL     = 5 * time.Minute

	// upcoming and finished views show at most this many fixtures
	fixtureWindow = 10
)

var ErrUnknownKind = errors.New("unknown query kind")

// Caller issues a remote function call and returns its validated body
type Caller interface {
	Call(ctx context.Context, function string, params map[string]string) (json.RawMessage, error)
}

// Params selects what a query returns. Empty fields take defaults.
type Params struct {
	League  string
	Season  string
	Status  string
	Country string
}

// Service answers dashboard queries
type Service struct {
	store cache.Store
	calls Caller
	log   zerolog.Logger
	now   func() time.Time

	liveTTL    time.Duration
	defaultTTL time.Duration

	defaultLeague string
	defaultSeason string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithTTL overrides the live and default entry lifetimes; zero keeps the
// current value
func WithTTL(live, other time.Duration) Option {
	return func(s *Service) {
		if live > 0 {
			s.liveTTL = live
		}
		if other > 0 {
			s.defaultTTL = other
		}
	}
}

// WithDefaults sets the league and season used when a query omits them
func WithDefaults(league, season string) Option {
	return func(s *Service) {
		if league != "" {
			s.defaultLeague = league
		}
		if season != "" {
			s.defaultSeason = season
		}
	}
}

// New creates a query service reading through store and fetching via calls
func New(store cache.Store, calls Caller, opts ...Option) *Service {
	s := &Service{
		store:         store,
		calls:         calls,
		log:           zerolog.Nop(),
		now:           time.Now,
		liveTTL:       DefaultLiveTTL,
		defaultTTL:    DefaultTTL,
		defaultLeague: football.DefaultLeague,
		defaultSeason: football.DefaultSeason,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With().Str("component", "query").Logger()
	return s
}

func (s *Service) normalize(p Params) Params {
	p.League = strings.TrimSpace(p.League)
	p.Season = strings.TrimSpace(p.Season)
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	p.Country = strings.TrimSpace(p.Country)
	if p.League == "" {
		p.League = s.defaultLeague
	}
	if p.Season == "" {
		p.Season = s.defaultSeason
	}
	return p
}

func leagueSeason(p Params) map[string]string {
	return map[string]string{"league": p.League, "season": p.Season}
}

// GetFixtures returns the fixtures of a league season, narrowed by the
// status filter. The live filter is served exactly like GetLiveScores.
func (s *Service) GetFixtures(ctx context.Context, p Params) Result[[]football.Fixture] {
	p = s.normalize(p)
	if !football.ValidFilter(p.Status) {
		return Failed[[]football.Fixture](&requests.Error{
			Kind:    requests.KindValidation,
			Message: fmt.Sprintf("Unknown status filter %q", p.Status),
		})
	}
	if p.Status == football.FilterLive {
		return s.GetLiveScores(ctx, p)
	}

	key := cache.FixturesKey(p.League, p.Season, p.Status)
	return guard(s, key, func() ([]football.Fixture, error) {
		if hit, ok := cache.GetAs[[]football.Fixture](s.store, key); ok {
			s.log.Debug().Str("key", key).Msg("Cache hit")
			return slices.Clone(hit), nil
		}

		// the provider has no status filter, so every status shares one call
		fixtures, err := s.fetchFixtures(ctx, FnFixtures, leagueSeason(p))
		if err != nil {
			return nil, err
		}
		fixtures = FilterFixtures(fixtures, p.Status, s.now())
		s.put(key, fixtures, s.defaultTTL)
		return slices.Clone(fixtures), nil
	})
}

// GetLiveScores returns in-play fixtures. Live data is always fetched; the
// cache entry is written for observability but never served.
func (s *Service) GetLiveScores(ctx context.Context, p Params) Result[[]football.Fixture] {
	p = s.normalize(p)
	key := cache.LiveScoresKey(p.League, p.Season)
	return guard(s, key, func() ([]football.Fixture, error) {
		fixtures, err := s.fetchFixtures(ctx, FnLiveScores, leagueSeason(p))
		if err != nil {
			return nil, err
		}
		fixtures = FilterFixtures(fixtures, football.FilterLive, s.now())
		s.put(key, fixtures, s.liveTTL)
		return slices.Clone(fixtures), nil
	})
}

// GetLeagues lists the leagues of a country. Empty country and season are
// left to the remote defaults.
func (s *Service) GetLeagues(ctx context.Context, p Params) Result[[]football.League] {
	country := strings.TrimSpace(p.Country)
	season := strings.TrimSpace(p.Season)
	key := cache.LeaguesKey(country, season)
	return guard(s, key, func() ([]football.League, error) {
		if hit, ok := cache.GetAs[[]football.League](s.store, key); ok {
			s.log.Debug().Str("key", key).Msg("Cache hit")
			return slices.Clone(hit), nil
		}

		raw, err := s.calls.Call(ctx, FnLeagues, map[string]string{"country": country, "season": season})
		if err != nil {
			return nil, err
		}
		leagues, rep := validation.ValidateLeagues(responseList(raw))
		if err := s.checkReport(FnLeagues, rep); err != nil {
			return nil, err
		}
		s.put(key, leagues, s.defaultTTL)
		return slices.Clone(leagues), nil
	})
}

// GetStandings returns the first table of a league season
func (s *Service) GetStandings(ctx context.Context, p Params) Result[[]football.Standing] {
	p = s.normalize(p)
	key := cache.StandingsKey(p.League, p.Season)
	return guard(s, key, func() ([]football.Standing, error) {
		if hit, ok := cache.GetAs[[]football.Standing](s.store, key); ok {
			s.log.Debug().Str("key", key).Msg("Cache hit")
			return slices.Clone(hit), nil
		}

		raw, err := s.calls.Call(ctx, FnStandings, leagueSeason(p))
		if err != nil {
			return nil, err
		}
		standings, rep := validation.ValidateStandings(standingsTable(raw))
		if err := s.checkReport(FnStandings, rep); err != nil {
			return nil, err
		}
		s.put(key, standings, s.defaultTTL)
		return slices.Clone(standings), nil
	})
}

// Invalidate drops the cached entry a query of kind with p would read and
// reports whether one existed
func (s *Service) Invalidate(kind string, p Params) (bool, error) {
	key, err := s.KeyFor(kind, p)
	if err != nil {
		return false, err
	}
	removed := s.store.Delete(key)
	s.log.Info().Str("key", key).Bool("removed", removed).Msg("Cache entry invalidated")
	return removed, nil
}

// KeyFor returns the cache key a query of kind with p uses
func (s *Service) KeyFor(kind string, p Params) (string, error) {
	switch kind {
	case KindFixtures:
		n := s.normalize(p)
		if n.Status == football.FilterLive {
			return cache.LiveScoresKey(n.League, n.Season), nil
		}
		return cache.FixturesKey(n.League, n.Season, n.Status), nil
	case KindLive:
		n := s.normalize(p)
		return cache.LiveScoresKey(n.League, n.Season), nil
	case KindLeagues:
		return cache.LeaguesKey(strings.TrimSpace(p.Country), strings.TrimSpace(p.Season)), nil
	case KindStandings:
		n := s.normalize(p)
		return cache.StandingsKey(n.League, n.Season), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// TeamLogo resolves the logo to show for a team, remembering the answer per
// team id
func (s *Service) TeamLogo(teamID, logo, name string) string {
	if teamID == "" {
		return validation.LogoOrFallback(logo, name)
	}
	key := cache.TeamImageKey(teamID)
	if hit, ok := cache.GetAs[string](s.store, key); ok {
		return hit
	}
	resolved := validation.LogoOrFallback(logo, name)
	s.put(key, resolved, s.defaultTTL)
	return resolved
}

// Stats reports the state of the underlying cache
func (s *Service) Stats() cache.Stats {
	return s.store.Stats()
}

func (s *Service) put(key string, value any, ttl time.Duration) {
	if err := s.store.Set(key, value, ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to cache result")
	}
}

func (s *Service) fetchFixtures(ctx context.Context, function string, params map[string]string) ([]football.Fixture, error) {
	raw, err := s.calls.Call(ctx, function, params)
	if err != nil {
		return nil, err
	}
	fixtures, rep := validation.ValidateFixtures(responseList(raw))
	if err := s.checkReport(function, rep); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// checkReport logs a validation report and fails when a non-empty batch
// had no valid record
func (s *Service) checkReport(function string, rep validation.Report) error {
	ev := s.log.Debug()
	if rep.Dropped > 0 {
		ev = s.log.Warn()
	}
	ev.Str("function", function).
		Int("total", rep.Total).
		Int("valid", rep.Valid).
		Int("dropped", rep.Dropped).
		Bool("not_array", rep.NotArray).
		Msg("Validated response")

	if rep.AllInvalid() {
		return &requests.Error{Kind: requests.KindValidation, Function: function, Message: requests.MsgInvalidData}
	}
	return nil
}

// guard runs fn and converts its outcome, including a panic, into a Result
func guard[T any](s *Service, key string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("key", key).Interface("panic", r).Msg("Query panicked")
			res = Failed[T](&requests.Error{Message: requests.MsgServiceError, Err: fmt.Errorf("query %s: %v", key, r)})
		}
	}()
	data, err := fn()
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Query failed")
		return Failed[T](err)
	}
	return succeeded(data)
}
