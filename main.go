package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/matchday/cache"
	"github.com/briangreenhill/matchday/internal/config"
	"github.com/briangreenhill/matchday/internal/logger"
	"github.com/briangreenhill/matchday/internal/provider"
	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/internal/validation"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, newService, time.Now).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serviceFactory builds the query service a command runs against
type serviceFactory func() (*query.Service, error)

// newService wires a query service from the environment. Logs go to stderr
// so they never mix with table output.
func newService() (*query.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.New(logger.Config{Level: level, Format: "console", Out: os.Stderr})

	caller, err := provider.FromConfig(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create remote caller: %w", err)
	}
	return query.New(cache.NewMemory(), requests.NewCoordinator(caller, log),
		query.WithLogger(log),
		query.WithTTL(cfg.Cache.LiveTTL, cfg.Cache.DefaultTTL),
		query.WithDefaults(cfg.Football.DefaultLeague, cfg.Football.DefaultSeason),
	), nil
}

type queryFlags struct {
	league  string
	season  string
	status  string
	country string
}

func (f *queryFlags) params() query.Params {
	return query.Params{League: f.league, Season: f.season, Status: f.status, Country: f.country}
}

func (f *queryFlags) validate(now time.Time) error {
	if f.league != "" && !validation.ValidLeagueID(f.league) {
		return fmt.Errorf("invalid league id %q", f.league)
	}
	if f.season != "" && !validation.ValidSeason(f.season, now) {
		return fmt.Errorf("invalid season %q", f.season)
	}
	return nil
}

func newRootCmd(out io.Writer, services serviceFactory, now func() time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:           "matchday",
		Short:         "Football fixtures, live scores, leagues and standings",
		Long:          "matchday queries API-Football (directly or through the hosted functions) and prints the results as tables.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	run := func(flags *queryFlags, fn func(context.Context, *query.Service, query.Params) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := flags.validate(now()); err != nil {
				return err
			}
			svc, err := services()
			if err != nil {
				return err
			}
			return fn(cmd.Context(), svc, flags.params())
		}
	}

	fixtures := &queryFlags{}
	fixturesCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "List fixtures of a league season",
		Example: `  matchday fixtures -l 39 -s 2023 --status upcoming
  matchday fixtures --status finished`,
		RunE: run(fixtures, func(ctx context.Context, svc *query.Service, p query.Params) error {
			res := svc.GetFixtures(ctx, p)
			if !res.OK() {
				return errors.New(*res.Error)
			}
			return writeFixtures(out, res.Data, now())
		}),
	}
	leagueSeasonFlags(fixturesCmd, fixtures)
	fixturesCmd.Flags().StringVar(&fixtures.status, "status", "", "status filter: live, upcoming or finished")

	live := &queryFlags{}
	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "List matches in play",
		RunE: run(live, func(ctx context.Context, svc *query.Service, p query.Params) error {
			res := svc.GetLiveScores(ctx, p)
			if !res.OK() {
				return errors.New(*res.Error)
			}
			if len(res.Data) == 0 {
				_, err := fmt.Fprintln(out, "No live matches")
				return err
			}
			return writeFixtures(out, res.Data, now())
		}),
	}
	leagueSeasonFlags(liveCmd, live)

	leagues := &queryFlags{}
	leaguesCmd := &cobra.Command{
		Use:   "leagues",
		Short: "List the leagues of a country",
		RunE: run(leagues, func(ctx context.Context, svc *query.Service, p query.Params) error {
			res := svc.GetLeagues(ctx, p)
			if !res.OK() {
				return errors.New(*res.Error)
			}
			return writeLeagues(out, res.Data)
		}),
	}
	leaguesCmd.Flags().StringVarP(&leagues.country, "country", "c", "", "country name (default England)")
	leaguesCmd.Flags().StringVarP(&leagues.season, "season", "s", "", "season year")

	standings := &queryFlags{}
	standingsCmd := &cobra.Command{
		Use:   "standings",
		Short: "Print a league table",
		RunE: run(standings, func(ctx context.Context, svc *query.Service, p query.Params) error {
			res := svc.GetStandings(ctx, p)
			if !res.OK() {
				return errors.New(*res.Error)
			}
			return writeStandings(out, res.Data)
		}),
	}
	leagueSeasonFlags(standingsCmd, standings)

	popularCmd := &cobra.Command{
		Use:   "popular",
		Short: "List the popular leagues and seasons",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePopular(out)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(out, "matchday %s\n", version)
			return err
		},
	}

	root.AddCommand(fixturesCmd, liveCmd, leaguesCmd, standingsCmd, popularCmd, versionCmd)
	return root
}

func leagueSeasonFlags(cmd *cobra.Command, f *queryFlags) {
	cmd.Flags().StringVarP(&f.league, "league", "l", "", "league id (default 39, Premier League)")
	cmd.Flags().StringVarP(&f.season, "season", "s", "", "season year (default 2023)")
}
