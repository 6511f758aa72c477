package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/liveactivity"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const testGameID int64 = 2024

func testLogger() *logging.Logger {
	return logging.NewNop()
}

func sampleGame(status game.Status) game.Game {
	return game.Game{
		ID:             testGameID,
		Status:         status,
		StartTimestamp: "2025-01-10T20:00:00Z",
		HomeTeam: game.TeamRef{
			ID:    11,
			Name:  "Inter Miami",
			Color: "#F7B5CD",
			Players: []game.Player{
				{ID: "p10", Name: "Lionel Messi", Number: 10, Position: "FW"},
				{ID: "p5", Name: "Sergio Busquets", Number: 5, Position: "MF"},
			},
		},
		AwayTeam: game.TeamRef{
			ID:    22,
			Name:  "LA Galaxy",
			Color: "#00245D",
			Players: []game.Player{
				{ID: "p23", Name: "Riqui Puig", Number: 10, Position: "MF"},
			},
		},
	}
}

func goalEvent(id int64, playerID string, teamID int64) matchevent.Event {
	return matchevent.Event{
		ID:        id,
		Type:      matchevent.TypeGoal,
		GameID:    testGameID,
		PlayerID:  playerID,
		TeamID:    teamID,
		Timestamp: "2025-01-10T20:31:00Z",
	}
}

func eventIDs(events []matchevent.Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

// fakeSource hands out one channel per Open; tests push into the current one
// and end it to simulate the server closing the stream.
type fakeSource[T any] struct {
	mu      sync.Mutex
	ch      chan T
	chDone  bool
	closed  bool
	opens   atomic.Int32
	closes  atomic.Int32
	lastCtx context.Context
}

func newFakeSource[T any]() *fakeSource[T] {
	return &fakeSource[T]{}
}

func (s *fakeSource[T]) Open(ctx context.Context, _ int64) <-chan T {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T)
	if s.closed {
		close(ch)
		return ch
	}
	s.ch = ch
	s.chDone = false
	s.lastCtx = ctx
	s.opens.Add(1)
	go func() {
		<-ctx.Done()
		s.endChannel(ch)
	}()
	return ch
}

func (s *fakeSource[T]) Close() {
	s.closes.Add(1)
	s.mu.Lock()
	s.closed = true
	ch := s.ch
	s.mu.Unlock()
	if ch != nil {
		s.endChannel(ch)
	}
}

func (s *fakeSource[T]) Opens() int {
	return int(s.opens.Load())
}

func (s *fakeSource[T]) push(t *testing.T, v T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		if s.ch != nil && !s.chDone {
			select {
			case s.ch <- v:
				s.mu.Unlock()
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
		s.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("no consumer for pushed value %v", v)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// end closes the current channel as if the server finished the stream.
func (s *fakeSource[T]) end() {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch != nil {
		s.endChannel(ch)
	}
}

func (s *fakeSource[T]) endChannel(ch chan T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == ch {
		if s.chDone {
			return
		}
		s.chDone = true
		close(ch)
		return
	}
}

// recordingHost is an in-test live-activity host that keeps every call.
type recordingHost struct {
	mu       sync.Mutex
	startErr error
	starts   []liveactivity.Content
	updates  []liveactivity.Content
	ends     []liveactivity.SessionID
	identity liveactivity.Identity
	seq      int
}

func (h *recordingHost) Start(_ context.Context, identity liveactivity.Identity, content liveactivity.Content) (liveactivity.SessionID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.startErr != nil {
		return "", h.startErr
	}
	h.seq++
	h.identity = identity
	h.starts = append(h.starts, content)
	return liveactivity.SessionID(fmt.Sprintf("la-%d", h.seq)), nil
}

func (h *recordingHost) Update(_ context.Context, _ liveactivity.SessionID, content liveactivity.Content) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, content)
	return nil
}

func (h *recordingHost) End(_ context.Context, id liveactivity.SessionID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends = append(h.ends, id)
	return nil
}

func (h *recordingHost) counts() (starts, updates, ends int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.starts), len(h.updates), len(h.ends)
}

func (h *recordingHost) firstStart() (liveactivity.Identity, liveactivity.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.starts) == 0 {
		return liveactivity.Identity{}, liveactivity.Content{}
	}
	return h.identity, h.starts[0]
}

func (h *recordingHost) lastUpdate() (liveactivity.Content, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.updates) == 0 {
		return liveactivity.Content{}, false
	}
	return h.updates[len(h.updates)-1], true
}

func fastBridgeConfig() LiveActivityBridgeConfig {
	return LiveActivityBridgeConfig{
		Enabled:           true,
		MinUpdateInterval: 10 * time.Millisecond,
		CoalesceWindow:    20 * time.Millisecond,
		HostTimeout:       time.Second,
	}
}
