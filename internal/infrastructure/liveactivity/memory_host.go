package liveactivity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/riskibarqy/matchday/internal/domain/liveactivity"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// Activity is what the surface currently shows for one game.
type Activity struct {
	SessionID domain.SessionID
	Identity  domain.Identity
	Content   domain.Content
	StartedAt time.Time
	UpdatedAt time.Time
	Updates   int
}

// MemoryHost is an in-process live-activity surface. It enforces one session
// per game and can be switched off to mimic a user disabling activities.
type MemoryHost struct {
	ids    id.Generator
	logger *logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	enabled  bool
	sessions map[domain.SessionID]*Activity
	byGame   map[int64]domain.SessionID
}

func NewMemoryHost(enabled bool, ids id.Generator, logger *logging.Logger) *MemoryHost {
	if ids == nil {
		ids = id.NewUUIDGenerator("la")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryHost{
		ids:      ids,
		logger:   logger.With("component", "live_activity_host"),
		now:      time.Now,
		enabled:  enabled,
		sessions: make(map[domain.SessionID]*Activity),
		byGame:   make(map[int64]domain.SessionID),
	}
}

func (h *MemoryHost) Start(_ context.Context, identity domain.Identity, content domain.Content) (domain.SessionID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.enabled {
		return "", domain.ErrActivitiesDisabled
	}
	if _, exists := h.byGame[identity.GameID]; exists {
		return "", fmt.Errorf("%w: game %d", domain.ErrSessionExists, identity.GameID)
	}

	raw, err := h.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("allocate session id: %w", err)
	}
	sid := domain.SessionID(raw)
	now := h.now()
	h.sessions[sid] = &Activity{
		SessionID: sid,
		Identity:  identity,
		Content:   content,
		StartedAt: now,
		UpdatedAt: now,
	}
	h.byGame[identity.GameID] = sid

	h.logger.Info("activity shown", "session_id", raw, "game_id", identity.GameID)
	return sid, nil
}

func (h *MemoryHost) Update(_ context.Context, sid domain.SessionID, content domain.Content) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	activity, ok := h.sessions[sid]
	if !ok {
		return domain.ErrSessionNotFound
	}
	activity.Content = content
	activity.UpdatedAt = h.now()
	activity.Updates++
	return nil
}

func (h *MemoryHost) End(_ context.Context, sid domain.SessionID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	activity, ok := h.sessions[sid]
	if !ok {
		return domain.ErrSessionNotFound
	}
	delete(h.sessions, sid)
	delete(h.byGame, activity.Identity.GameID)

	h.logger.Info("activity removed", "session_id", string(sid), "game_id", activity.Identity.GameID, "updates", activity.Updates)
	return nil
}

// Activity returns the surface for gameID, if one is shown.
func (h *MemoryHost) Activity(gameID int64) (Activity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sid, ok := h.byGame[gameID]
	if !ok {
		return Activity{}, false
	}
	return *h.sessions[sid], true
}

// Activities lists every shown surface ordered by game id.
func (h *MemoryHost) Activities() []Activity {
	h.mu.RLock()
	out := make([]Activity, 0, len(h.sessions))
	for _, a := range h.sessions {
		out = append(out, *a)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Identity.GameID < out[j].Identity.GameID })
	return out
}

// Dismiss removes the surface as if the user swiped it away. The owning
// bridge learns about it on its next update.
func (h *MemoryHost) Dismiss(gameID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	sid, ok := h.byGame[gameID]
	if !ok {
		return false
	}
	delete(h.sessions, sid)
	delete(h.byGame, gameID)
	return true
}

func (h *MemoryHost) SetEnabled(enabled bool) {
	h.mu.Lock()
	h.enabled = enabled
	h.mu.Unlock()
}
