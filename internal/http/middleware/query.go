package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/matchday/internal/validation"
	"github.com/briangreenhill/matchday/pkg/football"
)

// Messages returned for rejected query parameters
const (
	MsgInvalidLeague = "Invalid league ID"
	MsgInvalidSeason = "Invalid season"
	MsgInvalidStatus = "Invalid status filter"
)

// ValidateQuery rejects requests whose league, season or status query
// parameters are present but malformed. The body has the same shape as a
// query result so clients handle it the same way.
func ValidateQuery(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var msg string
			switch {
			case q.Has("league") && !validation.ValidLeagueID(strings.TrimSpace(q.Get("league"))):
				msg = MsgInvalidLeague
			case q.Has("season") && !validation.ValidSeason(strings.TrimSpace(q.Get("season")), now()):
				msg = MsgInvalidSeason
			case !football.ValidFilter(strings.ToLower(strings.TrimSpace(q.Get("status")))):
				msg = MsgInvalidStatus
			}
			if msg == "" {
				next.ServeHTTP(w, r)
				return
			}

			hlog.FromRequest(r).Warn().
				Str("query", r.URL.RawQuery).
				Str("reason", msg).
				Msg("Rejected query parameters")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "error": msg})
		})
	}
}
