package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"
	"nhooyr.io/websocket"

	"github.com/briangreenhill/matchday/internal/live"
	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/pkg/football"
)

const writeWait = 10 * time.Second

// handleLiveStream upgrades to a websocket and pushes one live score
// Result per poll until the client goes away
func (s *Server) handleLiveStream(w http.ResponseWriter, r *http.Request) {
	patterns, anyOrigin := originPatterns(s.Origins)
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     patterns,
		InsecureSkipVerify: anyOrigin,
	})
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	log := hlog.FromRequest(r).With().Str("component", "live_stream").Logger()
	ctx := conn.CloseRead(r.Context())

	p := paramsFrom(r)
	poller := live.NewPoller(s.Query, p, s.PollInterval, log)
	err = poller.Run(ctx, func(res query.Result[[]football.Fixture]) bool {
		b, err := json.Marshal(res)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode live result")
			return false
		}
		wctx, cancel := context.WithTimeout(ctx, writeWait)
		defer cancel()
		if err := conn.Write(wctx, websocket.MessageText, b); err != nil {
			log.Debug().Err(err).Msg("Live stream write failed")
			return false
		}
		return true
	})
	if err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("Live stream ended")
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
