package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/liveactivity"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const DefaultStreamReopenDelay = 2 * time.Second

type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionAttaching SessionState = "attaching"
	SessionAttached  SessionState = "attached"
	SessionDetached  SessionState = "detached"
)

type SessionConfig struct {
	ReopenDelay   time.Duration
	ClockInterval time.Duration
	Bridge        LiveActivityBridgeConfig
}

type SessionDeps struct {
	Games     game.Repository
	Events    EventSource
	Snapshots SnapshotSource
	Host      liveactivity.Host
	Logger    *logging.Logger
}

// Session supervises everything a visible game detail screen needs: the
// initial fetch, both streams, the match clock and the live-activity bridge.
type Session struct {
	gameID    int64
	games     game.Repository
	events    EventSource
	snapshots SnapshotSource
	store     *GameStateStore
	clock     *MatchClock
	bridge    *LiveActivityBridge
	cfg       SessionConfig
	logger    *logging.Logger

	wg conc.WaitGroup

	mu           sync.Mutex
	state        SessionState
	cancel       context.CancelFunc
	runCtx       context.Context
	clockStart   string
	clockRunning bool
	finished     bool
}

func NewSession(gameID int64, deps SessionDeps, cfg SessionConfig) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.ForGame(gameID)
	if cfg.ReopenDelay <= 0 {
		cfg.ReopenDelay = DefaultStreamReopenDelay
	}

	store := NewGameStateStore(logger)
	return &Session{
		gameID:    gameID,
		games:     deps.Games,
		events:    deps.Events,
		snapshots: deps.Snapshots,
		store:     store,
		clock:     NewMatchClock(cfg.ClockInterval, logger),
		bridge:    NewLiveActivityBridge(store, deps.Host, cfg.Bridge, logger),
		cfg:       cfg,
		logger:    logger.With("component", "session"),
		state:     SessionIdle,
	}
}

func (s *Session) GameID() int64 {
	return s.gameID
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() GameStateView {
	return s.store.CurrentView()
}

func (s *Session) Events() []matchevent.Event {
	return s.store.Events()
}

func (s *Session) Subscribe(buffer int) *eventbus.Subscription[Notification] {
	return s.store.Subscribe(buffer)
}

func (s *Session) BridgeState() BridgeState {
	return s.bridge.State()
}

// Attach fetches the game and starts live updates. The fetch error is the
// only failure surfaced to the caller; stream problems are handled inside.
// Attaching an attached session is a no-op.
func (s *Session) Attach(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case SessionAttached, SessionAttaching:
		s.mu.Unlock()
		return nil
	case SessionDetached:
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = SessionAttaching
	s.mu.Unlock()

	g, err := s.games.GetByID(ctx, s.gameID)
	if err == nil {
		err = s.store.Seed(g)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionDetached {
		return ErrSessionClosed
	}
	if err != nil {
		s.state = SessionIdle
		return fmt.Errorf("load game %d: %w", s.gameID, err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.runCtx = runCtx
	s.cancel = cancel
	s.state = SessionAttached

	s.wg.Go(func() { s.bridge.Run(runCtx) })

	view := s.store.CurrentView()
	if view.Status.IsFinished() {
		s.finished = true
		s.logger.Info("session attached to finished game, streams not opened")
		return nil
	}

	s.wg.Go(func() { s.pumpEvents(runCtx) })
	s.wg.Go(func() { s.pumpSnapshots(runCtx) })
	s.syncClockLocked(view)

	s.logger.Info("session attached", "status", view.Status)
	return nil
}

// Detach tears everything down. It is idempotent and safe to call at any
// point, including before Attach finished.
func (s *Session) Detach(ctx context.Context) {
	s.mu.Lock()
	if s.state == SessionDetached {
		s.mu.Unlock()
		return
	}
	s.state = SessionDetached
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.events.Close()
	s.snapshots.Close()
	s.clock.Stop()

	if r := s.wg.WaitAndRecover(); r != nil {
		s.logger.Error("session goroutine panicked", "panic", r.String())
	}

	s.bridge.Deactivate(ctx)
	s.store.Close()
	s.logger.Info("session detached")
}

func (s *Session) pumpEvents(ctx context.Context) {
	for {
		for e := range s.events.Open(ctx, s.gameID) {
			s.store.ApplyEvent(e)
		}
		if !s.reopen(ctx, "events") {
			return
		}
	}
}

func (s *Session) pumpSnapshots(ctx context.Context) {
	for {
		for g := range s.snapshots.Open(ctx, s.gameID) {
			s.store.ApplySnapshot(g)
			s.afterSnapshot()
		}
		if !s.reopen(ctx, "snapshots") {
			return
		}
	}
}

func (s *Session) pumpClock(ticks <-chan int) {
	for minutes := range ticks {
		s.store.Tick(minutes)
	}
}

// reopen waits out the reopen delay and reports whether the stream should be
// opened again.
func (s *Session) reopen(ctx context.Context, stream string) bool {
	if !s.live(ctx) {
		return false
	}
	s.logger.Info("stream closed, reopening", "stream", stream, "delay", s.cfg.ReopenDelay.String())

	timer := time.NewTimer(s.cfg.ReopenDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	return s.live(ctx)
}

func (s *Session) live(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == SessionAttached && !s.finished
}

func (s *Session) afterSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionAttached || s.finished {
		return
	}

	view := s.store.CurrentView()
	s.syncClockLocked(view)

	if view.Status.IsFinished() {
		s.finished = true
		s.logger.Info("game finished, closing streams")
		s.events.Close()
		s.snapshots.Close()
	}
}

// syncClockLocked keeps the clock running exactly while the game is live and
// restarts it when the start timestamp moves.
func (s *Session) syncClockLocked(view GameStateView) {
	if !view.Status.IsLive() {
		if s.clockRunning {
			s.clock.Stop()
			s.clockRunning = false
		}
		return
	}
	if s.clockRunning && s.clockStart == view.StartTimestamp {
		return
	}
	ticks := s.clock.Start(s.runCtx, view.StartTimestamp)
	s.clockRunning = true
	s.clockStart = view.StartTimestamp
	s.wg.Go(func() { s.pumpClock(ticks) })
}
