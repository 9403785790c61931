// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/matchday/cache"
	"github.com/briangreenhill/matchday/internal/config"
	"github.com/briangreenhill/matchday/internal/http/routes"
	"github.com/briangreenhill/matchday/internal/jobs"
	"github.com/briangreenhill/matchday/internal/logger"
	"github.com/briangreenhill/matchday/internal/provider"
	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/internal/scheduler"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog().Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	caller, err := provider.FromConfig(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote caller")
	}

	store := cache.NewMemory()
	svc := query.New(store, requests.NewCoordinator(caller, log),
		query.WithLogger(log),
		query.WithTTL(cfg.Cache.LiveTTL, cfg.Cache.DefaultTTL),
		query.WithDefaults(cfg.Football.DefaultLeague, cfg.Football.DefaultSeason),
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.Cache.CleanupSchedule, cache.NewCleanupJob(map[string]cache.Store{"query": store}, log)); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Cache.CleanupSchedule).Msg("register cache cleanup")
	}
	if cfg.Cache.WarmSchedule != "" {
		warm := jobs.NewWarmCacheJob(svc, cfg.Cache.WarmLeagues, cfg.Football.DefaultSeason, log)
		if err := sched.AddJob(cfg.Cache.WarmSchedule, warm); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Cache.WarmSchedule).Msg("register cache warming")
		}
		go func() {
			if err := sched.RunNow(warm); err != nil {
				log.Warn().Err(err).Msg("initial cache warm")
			}
		}()
	}
	sched.Start()
	defer sched.Stop()

	s := routes.New(routes.ServerOptions{
		Query:   svc,
		Cfg:     *cfg,
		Log:     log,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Bool("functions", cfg.UsesFunctions()).
			Bool("api_key", cfg.HasAPIKey()).
			Msg("starting matchday api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
}

func bootLog() *zerolog.Logger {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &l
}
