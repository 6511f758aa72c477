package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const gameJSON = `{"id":7,"home_score":1,"away_score":0,"status":"live","start_timestamp":"2025-01-10 20:00:00",` +
	`"home_team":{"id":11,"name":"Inter Miami","color":"#F7B5CD","players":[]},` +
	`"away_team":{"id":22,"name":"LA Galaxy","color":"#00245D","players":[]}}`

func newMatchAPI(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /games/7", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gameJSON))
	})
	holdStream := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		http.NewResponseController(w).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}
	mux.HandleFunc("GET /events/stream/7", holdStream)
	mux.HandleFunc("GET /games/stream/7", holdStream)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		AppEnv:                        config.EnvDev,
		ServiceName:                   "matchday-core",
		HTTPAddr:                      "127.0.0.1:0",
		ReadTimeout:                   time.Second,
		WriteTimeout:                  time.Second,
		CORSAllowedOrigins:            []string{"*"},
		MatchAPIBaseURL:               baseURL,
		MatchAPITimeout:               time.Second,
		CacheEnabled:                  true,
		CacheTTL:                      time.Minute,
		StreamReconnectInitial:        10 * time.Millisecond,
		StreamReconnectMax:            50 * time.Millisecond,
		StreamReopenDelay:             10 * time.Millisecond,
		ClockTickInterval:             time.Second,
		LiveActivityEnabled:           true,
		LiveActivityMinUpdateInterval: 10 * time.Millisecond,
		LiveActivityCoalesceWindow:    time.Millisecond,
		LiveActivityHostTimeout:       time.Second,
		SessionShutdownWorkers:        2,
	}
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.HTTPAddr = ""

	_, err := New(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestApp_AttachAndShutdown(t *testing.T) {
	api := newMatchAPI(t)

	a, err := New(testConfig(api.URL), logging.NewNop())
	require.NoError(t, err)

	front := httptest.NewServer(a.Server.Handler)
	defer front.Close()

	resp, err := http.Get(front.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(front.URL+"/v1/sessions/7", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []int64{7}, a.Sessions.GameIDs())
	require.Eventually(t, func() bool {
		_, ok := a.Activities.Activity(7)
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))

	assert.Empty(t, a.Sessions.GameIDs())
	_, ok := a.Activities.Activity(7)
	assert.False(t, ok, "live activity should end with the session")
}
