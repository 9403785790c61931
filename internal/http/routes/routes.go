package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/matchday/internal/config"
	appmw "github.com/briangreenhill/matchday/internal/http/middleware"
	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/internal/requests"
	"github.com/briangreenhill/matchday/pkg/football"
)

type Server struct {
	Router       *chi.Mux
	Query        *query.Service
	Log          zerolog.Logger
	PollInterval time.Duration
	Origins      []string
	Version      string
}

type ServerOptions struct {
	Query   *query.Service
	Cfg     config.Config
	Log     zerolog.Logger
	Version string
	Now     func() time.Time // used for season validation
}

func New(opts ServerOptions) *Server {
	origins := opts.Cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s := &Server{
		Router:       r,
		Query:        opts.Query,
		Log:          opts.Log.With().Str("component", "http").Logger(),
		PollInterval: opts.Cfg.Live.PollInterval,
		Origins:      origins,
		Version:      opts.Version,
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			s.Log.Error().Err(err).Msg("Error writing health check response")
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/leagues/popular", s.handlePopularLeagues)
		api.Get("/seasons", s.handleSeasons)
		api.Get("/logo", s.handleLogo)
		api.Get("/cache/stats", s.handleCacheStats)
		api.Get("/version", s.handleVersion)

		api.Group(func(qr chi.Router) {
			qr.Use(appmw.ValidateQuery(opts.Now))
			qr.Get("/fixtures", s.handleFixtures)
			qr.Get("/live", s.handleLive)
			qr.Get("/live/stream", s.handleLiveStream)
			qr.Get("/leagues", s.handleLeagues)
			qr.Get("/standings", s.handleStandings)
			qr.Post("/refresh/{kind}", s.handleRefresh)
		})
	})

	return s
}

func paramsFrom(r *http.Request) query.Params {
	q := r.URL.Query()
	return query.Params{
		League:  q.Get("league"),
		Season:  q.Get("season"),
		Status:  q.Get("status"),
		Country: q.Get("country"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Error writing response")
	}
}

// statusFor maps a failed query onto an HTTP status
func statusFor(kind requests.Kind) int {
	switch kind {
	case requests.KindConfig:
		return http.StatusServiceUnavailable
	case requests.KindTransport, requests.KindService, requests.KindMalformed, requests.KindValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeResult[T any](s *Server, w http.ResponseWriter, r *http.Request, res query.Result[T]) {
	status := http.StatusOK
	if !res.OK() {
		status = statusFor(res.Kind())
	}
	s.writeJSON(w, r, status, res)
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	writeResult(s, w, r, s.Query.GetFixtures(r.Context(), paramsFrom(r)))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeResult(s, w, r, s.Query.GetLiveScores(r.Context(), paramsFrom(r)))
}

func (s *Server) handleLeagues(w http.ResponseWriter, r *http.Request) {
	writeResult(s, w, r, s.Query.GetLeagues(r.Context(), paramsFrom(r)))
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	writeResult(s, w, r, s.Query.GetStandings(r.Context(), paramsFrom(r)))
}

// handleRefresh drops the cached entry for a query and answers it again
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	p := paramsFrom(r)

	if _, err := s.Query.Invalidate(kind, p); err != nil {
		if errors.Is(err, query.ErrUnknownKind) {
			s.writeJSON(w, r, http.StatusNotFound, map[string]any{"data": nil, "error": "Unknown query kind"})
			return
		}
		s.writeJSON(w, r, http.StatusInternalServerError, map[string]any{"data": nil, "error": err.Error()})
		return
	}

	switch kind {
	case query.KindFixtures:
		writeResult(s, w, r, s.Query.GetFixtures(r.Context(), p))
	case query.KindLive:
		writeResult(s, w, r, s.Query.GetLiveScores(r.Context(), p))
	case query.KindLeagues:
		writeResult(s, w, r, s.Query.GetLeagues(r.Context(), p))
	case query.KindStandings:
		writeResult(s, w, r, s.Query.GetStandings(r.Context(), p))
	}
}

func (s *Server) handlePopularLeagues(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, football.PopularLeagues)
}

func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, football.Seasons)
}

func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logo := s.Query.TeamLogo(q.Get("team"), q.Get("url"), q.Get("name"))
	s.writeJSON(w, r, http.StatusOK, map[string]string{"logo": logo})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.Query.Stats())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"version": s.Version})
}

// originPatterns converts allowed origins into websocket host patterns.
// A wildcard origin disables the check.
func originPatterns(origins []string) (patterns []string, anyOrigin bool) {
	if slices.Contains(origins, "*") {
		return nil, true
	}
	for _, o := range origins {
		if u, err := url.Parse(strings.TrimSpace(o)); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns, false
}
