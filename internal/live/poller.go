// Package live repeats a live score query on a fixed period.
package live

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/pkg/football"
)

const DefaultInterval = 30 * time.Second

// Source answers live score queries
type Source interface {
	GetLiveScores(ctx context.Context, p query.Params) query.Result[[]football.Fixture]
}

// Poller delivers a fresh live score Result on every tick. It owns no
// state beyond its ticker; identical concurrent polls collapse in the
// query layer.
type Poller struct {
	source   Source
	params   query.Params
	interval time.Duration
	log      zerolog.Logger
}

// NewPoller creates a poller for params. A non-positive interval uses
// DefaultInterval.
func NewPoller(source Source, params query.Params, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		params:   params,
		interval: interval,
		log: log.With().
			Str("component", "live").
			Str("league", params.League).
			Str("season", params.Season).
			Logger(),
	}
}

// Run polls immediately and then once per interval until ctx ends or
// deliver returns false. It returns ctx.Err() or nil respectively.
func (p *Poller) Run(ctx context.Context, deliver func(query.Result[[]football.Fixture]) bool) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug().Dur("interval", p.interval).Msg("Live polling started")
	defer p.log.Debug().Msg("Live polling stopped")

	for {
		res := p.source.GetLiveScores(ctx, p.params)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !res.OK() {
			p.log.Warn().Str("error", *res.Error).Msg("Live poll failed")
		}
		if !deliver(res) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
