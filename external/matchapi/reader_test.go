package matchapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

func eventFrame(t *testing.T, id int64, eventType string) sse.Event {
	t.Helper()
	raw, err := fixtureJSON.MarshalToString(map[string]any{
		"event_id":    id,
		"event_type":  eventType,
		"game_id":     42,
		"player_id":   "p10",
		"timestamp":   "2025-01-10T20:31:00Z",
		"team_colors": []string{"#F7B5CD"},
		"team_id":     11,
	})
	require.NoError(t, err)
	return sse.Event{Id: strconv.FormatInt(id, 10), Data: raw}
}

func snapshotFrame(t *testing.T, homeScore int) sse.Event {
	t.Helper()
	raw, err := fixtureJSON.MarshalToString(gamePayload(42, "live", homeScore))
	require.NoError(t, err)
	return sse.Event{Event: "update", Data: raw}
}

func writeFrames(t *testing.T, w http.ResponseWriter, frames ...sse.Event) {
	t.Helper()
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, frame := range frames {
		require.NoError(t, sse.Encode(w, frame))
	}
	w.(http.Flusher).Flush()
}

func collect[T any](t *testing.T, ch <-chan T) []T {
	t.Helper()
	var out []T
	timeout := time.After(3 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-timeout:
			t.Fatalf("stream did not close, got %d values", len(out))
			return out
		}
	}
}

func TestEventStreamReader_DeliversInOrderAndSkipsMalformed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/stream/42", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		writeFrames(t, w,
			eventFrame(t, 1, "Goal"),
			sse.Event{Data: "{not json"},
			eventFrame(t, 2, "Dive"),
			sse.Event{Event: "ping", Data: "{}"},
			eventFrame(t, 3, "yellowcard"),
		)
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewEventStreamReader()
	defer reader.Close()

	events := collect(t, reader.Open(context.Background(), 42))
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, matchevent.TypeGoal, events[0].Type)
	assert.Equal(t, int64(3), events[1].ID)
	assert.Equal(t, matchevent.TypeYellowCard, events[1].Type)
	assert.Equal(t, []string{"#F7B5CD"}, events[1].TeamColors)
}

func TestEventStreamReader_ReopenResumesAndDropsReplays(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		headers []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Get("Last-Event-ID"))
		attempt := len(headers)
		mu.Unlock()

		if attempt == 1 {
			writeFrames(t, w, eventFrame(t, 1, "Goal"), eventFrame(t, 2, "Corner"), eventFrame(t, 3, "Foul"))
			return
		}
		writeFrames(t, w, eventFrame(t, 2, "Corner"), eventFrame(t, 3, "Foul"), eventFrame(t, 4, "Offside"))
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewEventStreamReader()
	defer reader.Close()

	first := collect(t, reader.Open(context.Background(), 42))
	second := collect(t, reader.Open(context.Background(), 42))

	assert.Equal(t, []int64{1, 2, 3}, idsOf(first))
	assert.Equal(t, []int64{4}, idsOf(second))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "3"}, headers)
}

func TestSnapshotStreamReader_ReconnectsAfterTransientStatus(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/stream/42", r.URL.Path)
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeFrames(t, w, snapshotFrame(t, 0), snapshotFrame(t, 1))
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewSnapshotStreamReader()
	defer reader.Close()

	snapshots := collect(t, reader.Open(context.Background(), 42))
	require.Len(t, snapshots, 2)
	assert.Equal(t, 1, snapshots[1].HomeScore)
	assert.Equal(t, game.StatusLive, snapshots[1].Status)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestSnapshotStreamReader_DropsOtherGames(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := fixtureJSON.MarshalToString(gamePayload(43, "live", 3))
		writeFrames(t, w, sse.Event{Data: raw}, snapshotFrame(t, 1))
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewSnapshotStreamReader()
	defer reader.Close()

	snapshots := collect(t, reader.Open(context.Background(), 42))
	require.Len(t, snapshots, 1)
	assert.Equal(t, int64(42), snapshots[0].ID)
}

func TestStreamReader_NonRetryableStatusCloses(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewEventStreamReader()
	defer reader.Close()

	assert.Empty(t, collect(t, reader.Open(context.Background(), 42)))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestStreamReader_ReconnectBudget(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	client.stream.MaxReconnects = 2
	reader := client.NewEventStreamReader()
	defer reader.Close()

	assert.Empty(t, collect(t, reader.Open(context.Background(), 42)))
	assert.Equal(t, int32(3), attempts.Load(), "first attempt plus two reconnects")
}

func TestStreamReader_CloseCancelsInFlightRead(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFrames(t, w, eventFrame(t, 1, "Goal"))
		<-r.Context().Done()
	}))
	defer srv.Close()

	reader := newTestClient(srv.URL, 0).NewEventStreamReader()
	ch := reader.Open(context.Background(), 42)

	select {
	case e := <-ch:
		assert.Equal(t, int64(1), e.ID)
	case <-time.After(2 * time.Second):
		t.Fatalf("expected first event")
	}

	reader.Close()
	reader.Close()
	assert.Empty(t, collect(t, ch))

	_, ok := <-reader.Open(context.Background(), 42)
	assert.False(t, ok, "open after close yields a closed channel")
}

func idsOf(events []matchevent.Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
