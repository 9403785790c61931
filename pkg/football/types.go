// Package football holds the typed records returned by the API-Football v3
// provider and the constants the dashboard defaults to.
package football

import (
	"strings"
	"time"
)

// Fixture is a single match. Nullable score fields are pointers.
type Fixture struct {
	Fixture FixtureInfo   `json:"fixture"`
	Teams   Teams         `json:"teams"`
	Goals   Goals         `json:"goals"`
	Score   Score         `json:"score"`
	League  FixtureLeague `json:"league"`
}

// FixtureInfo carries the match identity, kick-off time and status.
type FixtureInfo struct {
	ID        int64  `json:"id"`
	Date      string `json:"date"` // RFC3339, e.g. "2023-08-11T19:00:00+00:00"
	Timestamp int64  `json:"timestamp"`
	Status    Status `json:"status"`
	Venue     Venue  `json:"venue"`
}

// kickoffLayouts are tried in order. Layouts without a zone are read as UTC.
var kickoffLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	time.DateTime,
}

// Kickoff parses Date, falling back to the unix Timestamp. The zero time is
// returned when neither is usable.
func (f FixtureInfo) Kickoff() time.Time {
	date := strings.TrimSpace(f.Date)
	for _, layout := range kickoffLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	if f.Timestamp > 0 {
		return time.Unix(f.Timestamp, 0).UTC()
	}
	return time.Time{}
}

type Status struct {
	Short string `json:"short"` // "NS","1H","HT","2H","FT",...
	Long  string `json:"long"`
}

type Venue struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Halftime Goals `json:"halftime"`
	Fulltime Goals `json:"fulltime"`
}

// FixtureLeague is the competition summary embedded in a fixture.
type FixtureLeague struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo"`
	Season  int    `json:"season"`
}

// League is a competition entry from the leagues endpoint.
type League struct {
	League  LeagueInfo `json:"league"`
	Country Country    `json:"country"`
	Seasons []Season   `json:"seasons"`
}

type LeagueInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // "League" or "Cup"
	Logo string `json:"logo"`
}

type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Flag string `json:"flag"`
}

type Season struct {
	Year    int    `json:"year"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Current bool   `json:"current"`
}

// Standing is one row of a league table.
type Standing struct {
	Rank        int    `json:"rank"`
	Team        Team   `json:"team"`
	Points      int    `json:"points"`
	GoalsDiff   int    `json:"goalsDiff"`
	Group       string `json:"group"`
	Form        string `json:"form"`
	Status      string `json:"status"`
	Description string `json:"description"`
	All         Record `json:"all"`
	Home        Record `json:"home"`
	Away        Record `json:"away"`
}

// Record is a win/draw/loss split for one context (all, home or away).
type Record struct {
	Played int         `json:"played"`
	Win    int         `json:"win"`
	Draw   int         `json:"draw"`
	Lose   int         `json:"lose"`
	Goals  GoalsTotals `json:"goals"`
}

type GoalsTotals struct {
	For     int `json:"for"`
	Against int `json:"against"`
}
