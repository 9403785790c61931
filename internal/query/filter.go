package query

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/briangreenhill/matchday/pkg/football"
)

// FilterFixtures narrows fixtures to a status filter:
//
//	live     in-play statuses
//	upcoming not started with a kickoff after now, earliest first, first 10
//	finished completed statuses in kickoff order, last 10
//
// Any other filter returns the input unchanged. The input is not modified.
func FilterFixtures(fixtures []football.Fixture, filter string, now time.Time) []football.Fixture {
	out := make([]football.Fixture, 0, len(fixtures))
	switch filter {
	case football.FilterLive:
		for _, f := range fixtures {
			if football.IsInPlay(f.Fixture.Status.Short) {
				out = append(out, f)
			}
		}
		return out

	case football.FilterUpcoming:
		for _, f := range fixtures {
			if f.Fixture.Status.Short == football.StatusNotStarted && f.Fixture.Kickoff().After(now) {
				out = append(out, f)
			}
		}
		byKickoff(out)
		if len(out) > fixtureWindow {
			out = out[:fixtureWindow]
		}
		return out

	case football.FilterFinished:
		for _, f := range fixtures {
			if football.IsFinished(f.Fixture.Status.Short) {
				out = append(out, f)
			}
		}
		byKickoff(out)
		if len(out) > fixtureWindow {
			out = out[len(out)-fixtureWindow:]
		}
		return out
	}
	return append(out, fixtures...)
}

func byKickoff(fixtures []football.Fixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].Fixture.Kickoff().Before(fixtures[j].Fixture.Kickoff())
	})
}

// responseList extracts the provider's response array
func responseList(raw json.RawMessage) []byte {
	return []byte(gjson.GetBytes(raw, "response").Raw)
}

// standingsTable unwraps the grouped tables of a standings payload into one
// list of rows, group after group. Rows keep their "group" field. A group
// that is not a table is passed on as a row so validation counts it.
func standingsTable(raw json.RawMessage) []byte {
	groups := gjson.GetBytes(raw, "response.0.league.standings")
	if !groups.IsArray() {
		return []byte(groups.Raw)
	}
	var rows []string
	groups.ForEach(func(_, group gjson.Result) bool {
		if !group.IsArray() {
			rows = append(rows, group.Raw)
			return true
		}
		group.ForEach(func(_, row gjson.Result) bool {
			rows = append(rows, row.Raw)
			return true
		})
		return true
	})
	return []byte("[" + strings.Join(rows, ",") + "]")
}
