// Package validation guards the boundary between untrusted provider payloads
// and the typed records in pkg/football.
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/briangreenhill/matchday/pkg/football"
)

// Failure explains why a single record was rejected
type Failure struct {
	Field  string
	Reason string
}

func (f *Failure) Error() string {
	if f.Field == "" {
		return "invalid record: " + f.Reason
	}
	return fmt.Sprintf("invalid record: %s %s", f.Field, f.Reason)
}

// Decoded is the outcome of decoding one record: either Record is usable
// or Err says why it is not.
type Decoded[T any] struct {
	Record T
	Err    error
}

func (d Decoded[T]) Valid() bool { return d.Err == nil }

// Report is the per-batch observability signal. Dropped records are
// counted, not treated as errors.
type Report struct {
	Total    int
	Valid    int
	Dropped  int
	NotArray bool
}

// AllInvalid is true when a non-empty batch produced no usable record
func (r Report) AllInvalid() bool {
	return r.Total > 0 && r.Valid == 0
}

type rule struct {
	path     string
	kind     gjson.Type
	nonEmpty bool
}

var (
	fixtureRules = []rule{
		{path: "fixture.id", kind: gjson.Number},
		{path: "fixture.date", kind: gjson.String},
		{path: "teams.home.name", kind: gjson.String, nonEmpty: true},
		{path: "teams.away.name", kind: gjson.String, nonEmpty: true},
		{path: "league.name", kind: gjson.String, nonEmpty: true},
	}
	leagueRules = []rule{
		{path: "league.id", kind: gjson.Number},
		{path: "league.name", kind: gjson.String, nonEmpty: true},
		{path: "country.name", kind: gjson.String, nonEmpty: true},
	}
	standingRules = []rule{
		{path: "rank", kind: gjson.Number},
		{path: "team.name", kind: gjson.String, nonEmpty: true},
		{path: "points", kind: gjson.Number},
		{path: "all.played", kind: gjson.Number},
	}
)

func checkShape(raw []byte, rules []rule) error {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return &Failure{Reason: "not an object"}
	}
	for _, r := range rules {
		v := doc.Get(r.path)
		if !v.Exists() {
			return &Failure{Field: r.path, Reason: "missing"}
		}
		if v.Type != r.kind {
			return &Failure{Field: r.path, Reason: "has type " + v.Type.String() + ", want " + r.kind.String()}
		}
		if r.nonEmpty && v.Str == "" {
			return &Failure{Field: r.path, Reason: "is empty"}
		}
	}
	return nil
}

func decode[T any](raw []byte, rules []rule) Decoded[T] {
	var d Decoded[T]
	if err := checkShape(raw, rules); err != nil {
		d.Err = err
		return d
	}
	if err := json.Unmarshal(raw, &d.Record); err != nil {
		d.Err = &Failure{Reason: "decode: " + err.Error()}
	}
	return d
}

// DecodeFixture checks and decodes one fixture envelope
func DecodeFixture(raw []byte) Decoded[football.Fixture] {
	return decode[football.Fixture](raw, fixtureRules)
}

// DecodeLeague checks and decodes one league envelope
func DecodeLeague(raw []byte) Decoded[football.League] {
	return decode[football.League](raw, leagueRules)
}

// DecodeStanding checks and decodes one table row
func DecodeStanding(raw []byte) Decoded[football.Standing] {
	return decode[football.Standing](raw, standingRules)
}

// ValidateList decodes every element of a JSON array and keeps the valid
// ones in their original order. Input that is not an array yields no
// records and no error, since providers sometimes answer with an error
// object where a list was expected.
func ValidateList[T any](raw []byte, dec func([]byte) Decoded[T]) ([]T, Report) {
	out := []T{}
	var rep Report

	list := gjson.ParseBytes(raw)
	if !list.IsArray() {
		rep.NotArray = true
		return out, rep
	}
	list.ForEach(func(_, item gjson.Result) bool {
		rep.Total++
		if d := dec([]byte(item.Raw)); d.Valid() {
			out = append(out, d.Record)
		}
		return true
	})
	rep.Valid = len(out)
	rep.Dropped = rep.Total - rep.Valid
	return out, rep
}

func ValidateFixtures(raw []byte) ([]football.Fixture, Report) {
	return ValidateList(raw, DecodeFixture)
}

func ValidateLeagues(raw []byte) ([]football.League, Report) {
	return ValidateList(raw, DecodeLeague)
}

func ValidateStandings(raw []byte) ([]football.Standing, Report) {
	return ValidateList(raw, DecodeStanding)
}
