package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/briangreenhill/matchday/pkg/football"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func score(g football.Goals) string {
	if g.Home == nil || g.Away == nil {
		return "-"
	}
	return fmt.Sprintf("%d - %d", *g.Home, *g.Away)
}

// when renders a kickoff relative to now, e.g. "3 hours from now"
func when(kickoff, now time.Time) string {
	if kickoff.IsZero() {
		return "-"
	}
	return humanize.RelTime(kickoff, now, "ago", "from now")
}

func writeFixtures(out io.Writer, fixtures []football.Fixture, now time.Time) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "KICKOFF\tWHEN\tSTATUS\tHOME\tSCORE\tAWAY")
	for _, f := range fixtures {
		kickoff := f.Fixture.Kickoff()
		date := "-"
		if !kickoff.IsZero() {
			date = kickoff.UTC().Format("Mon 02 Jan 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			date, when(kickoff, now), f.Fixture.Status.Short,
			f.Teams.Home.Name, score(f.Goals), f.Teams.Away.Name)
	}
	return tw.Flush()
}

func writeStandings(out io.Writer, standings []football.Standing) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "#\tTEAM\tP\tW\tD\tL\tGF\tGA\tGD\tPTS\tFORM")
	for _, s := range standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t%s\n",
			s.Rank, s.Team.Name, s.All.Played, s.All.Win, s.All.Draw, s.All.Lose,
			s.All.Goals.For, s.All.Goals.Against, s.GoalsDiff, s.Points, s.Form)
	}
	return tw.Flush()
}

func currentSeason(seasons []football.Season) string {
	for _, s := range seasons {
		if s.Current {
			return strconv.Itoa(s.Year)
		}
	}
	return "-"
}

func writeLeagues(out io.Writer, leagues []football.League) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCOUNTRY\tCURRENT")
	for _, l := range leagues {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			l.League.ID, l.League.Name, l.League.Type, l.Country.Name, currentSeason(l.Seasons))
	}
	return tw.Flush()
}

func writePopular(out io.Writer) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY")
	for _, l := range football.PopularLeagues {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", l.ID, l.Name, l.Country)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SEASON\tLABEL")
	for _, s := range football.Seasons {
		fmt.Fprintf(tw, "%s\t%s\n", s.Value, s.Label)
	}
	return tw.Flush()
}
