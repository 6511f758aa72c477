package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/liveactivity"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const defaultShutdownWorkers = 4

type SessionManagerDeps struct {
	Games             game.Repository
	NewEventSource    func() EventSource
	NewSnapshotSource func() SnapshotSource
	Host              liveactivity.Host
	Logger            *logging.Logger
}

// SessionManager binds game detail screens to sessions, one per game id.
type SessionManager struct {
	deps            SessionManagerDeps
	cfg             SessionConfig
	shutdownWorkers int
	logger          *logging.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionManager(deps SessionManagerDeps, cfg SessionConfig, shutdownWorkers int) *SessionManager {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if shutdownWorkers <= 0 {
		shutdownWorkers = defaultShutdownWorkers
	}
	return &SessionManager{
		deps:            deps,
		cfg:             cfg,
		shutdownWorkers: shutdownWorkers,
		logger:          deps.Logger.With("component", "session_manager"),
		sessions:        make(map[int64]*Session),
	}
}

// Attach opens a session for gameID, or returns the view of the one already
// open.
func (m *SessionManager) Attach(ctx context.Context, gameID int64) (_ GameStateView, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionManager.Attach", gameAttr(gameID))
	defer func() { finishSpan(span, err) }()

	if gameID <= 0 {
		return GameStateView{}, fmt.Errorf("%w: game id must be greater than zero", ErrInvalidInput)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[gameID]; ok {
		m.mu.Unlock()
		return existing.View(), nil
	}
	session := NewSession(gameID, SessionDeps{
		Games:     m.deps.Games,
		Events:    m.deps.NewEventSource(),
		Snapshots: m.deps.NewSnapshotSource(),
		Host:      m.deps.Host,
		Logger:    m.deps.Logger,
	}, m.cfg)
	m.sessions[gameID] = session
	m.mu.Unlock()

	if err = session.Attach(ctx); err != nil {
		m.mu.Lock()
		if m.sessions[gameID] == session {
			delete(m.sessions, gameID)
		}
		m.mu.Unlock()
		session.Detach(ctx)
		return GameStateView{}, err
	}
	return session.View(), nil
}

// Detach closes the session for gameID. Unknown ids are ignored.
func (m *SessionManager) Detach(ctx context.Context, gameID int64) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionManager.Detach", gameAttr(gameID))
	defer span.End()

	m.mu.Lock()
	session, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()
	if !ok {
		return
	}
	session.Detach(ctx)
}

func (m *SessionManager) Session(gameID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: no session for game %d", ErrNotFound, gameID)
	}
	return session, nil
}

func (m *SessionManager) View(gameID int64) (GameStateView, error) {
	session, err := m.Session(gameID)
	if err != nil {
		return GameStateView{}, err
	}
	return session.View(), nil
}

func (m *SessionManager) Events(gameID int64) ([]matchevent.Event, error) {
	session, err := m.Session(gameID)
	if err != nil {
		return nil, err
	}
	return session.Events(), nil
}

func (m *SessionManager) Subscribe(gameID int64, buffer int) (*eventbus.Subscription[Notification], error) {
	session, err := m.Session(gameID)
	if err != nil {
		return nil, err
	}
	return session.Subscribe(buffer), nil
}

// GameIDs lists games with an open session in ascending order.
func (m *SessionManager) GameIDs() []int64 {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// CloseAll detaches every session concurrently. Used on shutdown.
func (m *SessionManager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, session := range m.sessions {
		sessions = append(sessions, session)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if len(sessions) == 0 {
		return nil
	}

	workerCount := min(m.shutdownWorkers, len(sessions))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		for _, session := range sessions {
			session.Detach(ctx)
		}
		return fmt.Errorf("create shutdown pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, session := range sessions {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			session.Detach(ctx)
		}); err != nil {
			workers.Done()
			m.logger.Warn("shutdown pool rejected session, detaching inline", "game_id", session.GameID(), "error", err)
			session.Detach(ctx)
		}
	}
	workers.Wait()

	m.logger.Info("all sessions closed", "count", len(sessions))
	return nil
}
