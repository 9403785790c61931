// Package jobs holds the background jobs run by the api scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/pkg/football"
)

const TaskWarmCache = "warm:cache"

// defaultTimeout bounds one full sweep over every league
const defaultTimeout = 2 * time.Minute

// warmStatuses are the fixture views the dashboard opens with
var warmStatuses = []string{football.FilterUpcoming, football.FilterFinished}

// Queries is the part of the query service the warmer drives
type Queries interface {
	GetFixtures(ctx context.Context, p query.Params) query.Result[[]football.Fixture]
	GetStandings(ctx context.Context, p query.Params) query.Result[[]football.Standing]
}

// WarmCacheJob prefetches fixtures and standings so the first visitor of a
// popular league is served from the cache
type WarmCacheJob struct {
	queries Queries
	leagues []string
	season  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewWarmCacheJob creates a warmer for leagues in season. An empty season
// uses the query service default.
func NewWarmCacheJob(queries Queries, leagues []string, season string, log zerolog.Logger) *WarmCacheJob {
	return &WarmCacheJob{
		queries: queries,
		leagues: leagues,
		season:  season,
		timeout: defaultTimeout,
		log:     log.With().Str("job", TaskWarmCache).Logger(),
	}
}

func (j *WarmCacheJob) Name() string { return TaskWarmCache }

// Run warms every league. Retryable failures are returned joined so the
// scheduler reports them; a permanent failure such as a missing API key
// stops the sweep and is only logged, the next tick will fail the same way.
func (j *WarmCacheJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	var errs []error
	warmed := 0
	for _, league := range j.leagues {
		err := j.warm(ctx, query.Params{League: league, Season: j.season})
		if err == nil {
			warmed++
			continue
		}
		if !Retryable(err) {
			j.log.Warn().Err(err).Str("league", league).Msg("permanent error, stopping warm")
			return nil
		}
		j.log.Debug().Err(err).Str("league", league).Msg("retryable error")
		errs = append(errs, fmt.Errorf("league %s: %w", league, err))
	}

	j.log.Info().
		Int("warmed", warmed).
		Int("failed", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("cache warmed")
	return errors.Join(errs...)
}

func (j *WarmCacheJob) warm(ctx context.Context, p query.Params) error {
	if res := j.queries.GetStandings(ctx, p); !res.OK() {
		return res.Err()
	}
	for _, status := range warmStatuses {
		p.Status = status
		if res := j.queries.GetFixtures(ctx, p); !res.OK() {
			return res.Err()
		}
	}
	return nil
}

// Retryable reports whether a failed query may succeed on a later attempt.
// Unreachable services and provider side errors (rate limits included) are
// retryable; configuration and bad input are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return requests.IsKind(err, requests.KindTransport) || requests.IsKind(err, requests.KindService)
}
