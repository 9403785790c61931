package cache

import (
	"net/url"
	"strings"

	"github.com/briangreenhill/matchday/pkg/football"
)

// Query kinds used as the first key segment
const (
	KindFixtures  = "fixtures"
	KindLeagues   = "leagues"
	KindStandings = "standings"
	KindTeamImage = "team-image"
)

const (
	anyQualifier  = "all"
	currentSeason = "current"
)

// Key builds "<kind>:<league>:<season>:<qualifier>". Segments are always
// written in this order so identical queries share a key.
func Key(kind, league, season, qualifier string) string {
	if qualifier == "" {
		qualifier = anyQualifier
	}
	return strings.Join([]string{kind, clean(league), clean(season), clean(qualifier)}, ":")
}

// FixturesKey keys a fixtures query; an empty status means all fixtures
func FixturesKey(league, season, status string) string {
	return Key(KindFixtures, orDefault(league, football.DefaultLeague), orDefault(season, football.DefaultSeason), status)
}

// LiveScoresKey is the fixtures key with the live filter, so live-score
// queries and live fixture queries share one entry
func LiveScoresKey(league, season string) string {
	return FixturesKey(league, season, football.FilterLive)
}

// LeaguesKey keys a leagues query, qualified by country
func LeaguesKey(country, season string) string {
	return Key(KindLeagues, anyQualifier, orDefault(season, currentSeason), country)
}

// StandingsKey keys a league table query
func StandingsKey(league, season string) string {
	return Key(KindStandings, orDefault(league, football.DefaultLeague), orDefault(season, football.DefaultSeason), anyQualifier)
}

// TeamImageKey keys a resolved team logo
func TeamImageKey(teamID string) string {
	return KindTeamImage + ":" + clean(teamID)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// clean query-escapes a segment so ':' only ever appears as the separator
// and distinct inputs keep distinct keys
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return anyQualifier
	}
	return url.QueryEscape(s)
}
