package football

import "slices"

const (
	DefaultLeague  = "39"   // Premier League
	DefaultSeason  = "2023" // free plan covers 2021-2023 only
	DefaultCountry = "England"
)

// Status filters accepted by fixture queries.
const (
	FilterLive     = "live"
	FilterUpcoming = "upcoming"
	FilterFinished = "finished"
)

// Short status codes reported by the provider.
const (
	StatusNotStarted = "NS"
	StatusLive       = "LIVE"
	StatusFirstHalf  = "1H"
	StatusHalftime   = "HT"
	StatusSecondHalf = "2H"
	StatusFullTime   = "FT"
	StatusExtraTime  = "AET"
	StatusPenalties  = "PEN"
)

var (
	inPlayStatuses   = []string{StatusLive, StatusFirstHalf, StatusSecondHalf, StatusHalftime}
	finishedStatuses = []string{StatusFullTime, StatusExtraTime, StatusPenalties}
)

// IsInPlay reports whether a short status code means the match is running.
func IsInPlay(short string) bool {
	return slices.Contains(inPlayStatuses, short)
}

// IsFinished reports whether a short status code means the match is over.
func IsFinished(short string) bool {
	return slices.Contains(finishedStatuses, short)
}

// ValidFilter reports whether f is empty or one of the known status filters.
func ValidFilter(f string) bool {
	switch f {
	case "", FilterLive, FilterUpcoming, FilterFinished:
		return true
	}
	return false
}

// PopularLeague is a competition the dashboard offers in its selector.
type PopularLeague struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Flag    string `json:"flag"`
	Logo    string `json:"logo,omitempty"`
}

var PopularLeagues = []PopularLeague{
	{ID: "39", Name: "Premier League", Country: "England", Flag: "🏴󠁧󠁢󠁥󠁮󠁧󠁿", Logo: "https://media.api-sports.io/football/leagues/39.png"},
	{ID: "140", Name: "La Liga", Country: "Spain", Flag: "🇪🇸", Logo: "https://media.api-sports.io/football/leagues/140.png"},
	{ID: "78", Name: "Bundesliga", Country: "Germany", Flag: "🇩🇪", Logo: "https://media.api-sports.io/football/leagues/78.png"},
	{ID: "135", Name: "Serie A", Country: "Italy", Flag: "🇮🇹", Logo: "https://media.api-sports.io/football/leagues/135.png"},
	{ID: "61", Name: "Ligue 1", Country: "France", Flag: "🇫🇷", Logo: "https://media.api-sports.io/football/leagues/61.png"},
	{ID: "2", Name: "Champions League", Country: "Europe", Flag: "🇪🇺", Logo: "https://media.api-sports.io/football/leagues/2.png"},
	{ID: "3", Name: "Europa League", Country: "Europe", Flag: "🇪🇺", Logo: "https://media.api-sports.io/football/leagues/3.png"},
}

// SeasonOption pairs a season year with its display label.
type SeasonOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var Seasons = []SeasonOption{
	{Value: "2023", Label: "2023/24"},
	{Value: "2022", Label: "2022/23"},
	{Value: "2021", Label: "2021/22"},
}

// FindLeague looks up a popular league by id.
func FindLeague(id string) (PopularLeague, bool) {
	for _, l := range PopularLeagues {
		if l.ID == id {
			return l, true
		}
	}
	return PopularLeague{}, false
}
