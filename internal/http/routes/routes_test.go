package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/briangreenhill/matchday/cache"
	"github.com/briangreenhill/matchday/internal/config"
	"github.com/briangreenhill/matchday/internal/query"
	"github.com/briangreenhill/matchday/internal/requests"
)

const standingsBody = `{"results":1,"response":[{"league":{"id":39,"standings":[[
	{"rank":1,"team":{"id":50,"name":"Manchester City","logo":""},"points":91,"goalsDiff":62,"all":{"played":38,"win":28,"draw":7,"lose":3,"goals":{"for":96,"against":34}}},
	{"rank":2,"team":{"id":42,"name":"Arsenal","logo":""},"points":89,"goalsDiff":62,"all":{"played":38,"win":28,"draw":5,"lose":5,"goals":{"for":91,"against":29}}}
]]}}]}`

const liveBody = `{"results":2,"response":[
	{"fixture":{"id":1,"date":"2023-08-11T19:00:00+00:00","status":{"short":"2H","long":"Second Half"}},"teams":{"home":{"id":44,"name":"Burnley"},"away":{"id":50,"name":"Manchester City"}},"goals":{"home":0,"away":2},"league":{"id":39,"name":"Premier League"}},
	{"fixture":{"id":2,"date":"2023-08-12T12:30:00+00:00","status":{"short":"NS","long":"Not Started"}},"teams":{"home":{"id":42,"name":"Arsenal"},"away":{"id":65,"name":"Nottingham Forest"}},"goals":{"home":null,"away":null},"league":{"id":39,"name":"Premier League"}}
]}`

type stubCaller struct {
	mu    sync.Mutex
	calls map[string]int
	env   map[string]requests.Envelope
	err   error
}

func (s *stubCaller) Call(ctx context.Context, function string, params map[string]string) (requests.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[function]++
	if s.err != nil {
		return requests.Envelope{}, s.err
	}
	return s.env[function], nil
}

func (s *stubCaller) count(function string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[function]
}

func newTestServer(t *testing.T, caller *stubCaller) *Server {
	t.Helper()
	if caller.calls == nil {
		caller.calls = map[string]int{}
	}
	svc := query.New(cache.NewMemory(), requests.NewCoordinator(caller, zerolog.Nop()))
	return New(ServerOptions{
		Query: svc,
		Cfg: config.Config{
			AllowedOrigins: []string{"*"},
			Live:           config.LiveConfig{PollInterval: time.Hour},
		},
		Log:     zerolog.Nop(),
		Version: "test",
		Now:     func() time.Time { return time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC) },
	})
}

func defaultCaller() *stubCaller {
	return &stubCaller{env: map[string]requests.Envelope{
		query.FnStandings:  {Data: json.RawMessage(standingsBody)},
		query.FnLiveScores: {Data: json.RawMessage(liveBody)},
		query.FnFixtures:   {Data: json.RawMessage(liveBody)},
	}}
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, defaultCaller())
	rec, _ := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStandingsEndpoint(t *testing.T) {
	caller := defaultCaller()
	s := newTestServer(t, caller)

	rec, body := do(t, s, http.MethodGet, "/api/standings?league=39&season=2023")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["error"])
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)

	first := rec.Body.String()
	rec, _ = do(t, s, http.MethodGet, "/api/standings?league=39&season=2023")
	assert.Equal(t, first, rec.Body.String())
	assert.Equal(t, 1, caller.count(query.FnStandings))
}

func TestLiveEndpointFilters(t *testing.T) {
	s := newTestServer(t, defaultCaller())

	rec, body := do(t, s, http.MethodGet, "/api/live")
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, float64(1), data[0].(map[string]any)["fixture"].(map[string]any)["id"])
}

func TestInvalidParamsRejected(t *testing.T) {
	caller := defaultCaller()
	s := newTestServer(t, caller)

	for _, target := range []string{
		"/api/fixtures?league=abc",
		"/api/standings?season=1990",
		"/api/fixtures?status=postponed",
		"/api/live?league=-3",
	} {
		rec, body := do(t, s, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, body["error"], target)
	}
	assert.Equal(t, 0, caller.count(query.FnFixtures)+caller.count(query.FnStandings)+caller.count(query.FnLiveScores))
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name    string
		caller  *stubCaller
		status  int
		message string
	}{
		{
			name:    "transport",
			caller:  &stubCaller{err: errors.New("connection refused")},
			status:  http.StatusBadGateway,
			message: requests.MsgUnreachable,
		},
		{
			name:    "config",
			caller:  &stubCaller{env: map[string]requests.Envelope{query.FnStandings: {Error: "FOOTBALL_API_KEY not found in secrets"}}},
			status:  http.StatusServiceUnavailable,
			message: requests.MsgNotConfigured,
		},
		{
			name:    "invalid data",
			caller:  &stubCaller{env: map[string]requests.Envelope{query.FnStandings: {Data: json.RawMessage(`{"response":[{"league":{"standings":[[{"rank":"x"}]]}}]}`)}}},
			status:  http.StatusBadGateway,
			message: requests.MsgInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.caller)
			rec, body := do(t, s, http.MethodGet, "/api/standings")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, body["error"])
			assert.Contains(t, body, "data")
			assert.Nil(t, body["data"])
		})
	}
}

func TestRefresh(t *testing.T) {
	caller := defaultCaller()
	s := newTestServer(t, caller)

	do(t, s, http.MethodGet, "/api/standings")
	rec, body := do(t, s, http.MethodPost, "/api/refresh/standings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, 2, caller.count(query.FnStandings))

	rec, _ = do(t, s, http.MethodPost, "/api/refresh/transfers")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoEndpoint(t *testing.T) {
	s := newTestServer(t, defaultCaller())

	_, body := do(t, s, http.MethodGet, "/api/logo?url=https://media.api-sports.io/football/teams/42.png&name=Arsenal&team=42")
	assert.Equal(t, "https://media.api-sports.io/football/teams/42.png", body["logo"])

	_, body = do(t, s, http.MethodGet, "/api/logo?url=javascript:alert(1)&name=Arsenal")
	assert.True(t, strings.HasPrefix(body["logo"].(string), "data:image/svg+xml;base64,"))
}

func TestStaticEndpoints(t *testing.T) {
	s := newTestServer(t, defaultCaller())

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leagues/popular", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var leagues []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leagues))
	assert.Len(t, leagues, 7)

	_, body := do(t, s, http.MethodGet, "/api/version")
	assert.Equal(t, "test", body["version"])
}

func TestCacheStatsEndpoint(t *testing.T) {
	s := newTestServer(t, defaultCaller())
	do(t, s, http.MethodGet, "/api/standings")

	_, body := do(t, s, http.MethodGet, "/api/cache/stats")
	assert.Equal(t, float64(1), body["total"])
	assert.Equal(t, float64(1), body["active"])
	assert.Equal(t, float64(0), body["expired"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, defaultCaller())

	req := httptest.NewRequest(http.MethodOptions, "/api/fixtures", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLiveStream(t *testing.T) {
	s := newTestServer(t, defaultCaller())
	srv := httptest.NewServer(s.Router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/live/stream?league=39&season=2023", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	typ, msg, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var res map[string]any
	require.NoError(t, json.Unmarshal(msg, &res))
	assert.Nil(t, res["error"])
	assert.Len(t, res["data"], 1)
}

func TestOriginPatterns(t *testing.T) {
	patterns, anyOrigin := originPatterns([]string{"*"})
	assert.True(t, anyOrigin)
	assert.Nil(t, patterns)

	patterns, anyOrigin = originPatterns([]string{"http://localhost:5173", "https://matchday.example", "bogus"})
	assert.False(t, anyOrigin)
	assert.Equal(t, []string{"localhost:5173", "matchday.example"}, patterns)
}
