package usecase

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// GameStateStore is the single source of truth for one game: the latest
// snapshot, the event log (newest first) and the last accepted clock tick.
// Score and status come from snapshots only; events never touch them.
type GameStateStore struct {
	logger *logging.Logger
	bus    *eventbus.Bus[Notification]

	mu      sync.RWMutex
	game    game.Game
	seeded  bool
	events  []matchevent.Event
	seen    map[int64]struct{}
	elapsed int
	view    GameStateView
}

func NewGameStateStore(logger *logging.Logger) *GameStateStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameStateStore{
		logger: logger.With("component", "game_state_store"),
		bus:    eventbus.New[Notification](),
		seen:   make(map[int64]struct{}),
	}
}

// Seed installs the game from the initial detail fetch. A second seed is
// treated as a snapshot.
func (s *GameStateStore) Seed(g game.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		s.ApplySnapshot(g)
		return nil
	}
	s.game = g
	s.seeded = true
	s.view = buildView(s.game, s.events, s.elapsed)
	s.mu.Unlock()
	return nil
}

// ApplySnapshot replaces score, status and start timestamp with the server's.
// It reports whether any of them changed.
func (s *GameStateStore) ApplySnapshot(g game.Game) bool {
	if err := g.Validate(); err != nil {
		s.logger.Warn("snapshot dropped", "game_id", g.ID, "reason", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded && g.ID != s.game.ID {
		s.logger.Warn("snapshot dropped", "game_id", s.game.ID, "snapshot_game_id", g.ID, "reason", "game id mismatch")
		return false
	}

	prev := s.game
	wasSeeded := s.seeded
	next := prev
	next.ID = g.ID
	next.HomeScore = g.HomeScore
	next.AwayScore = g.AwayScore
	next.Status = g.Status
	if strings.TrimSpace(g.StartTimestamp) != "" {
		next.StartTimestamp = g.StartTimestamp
	}
	next.HomeTeam = mergeTeam(prev.HomeTeam, g.HomeTeam)
	next.AwayTeam = mergeTeam(prev.AwayTeam, g.AwayTeam)

	s.game = next
	s.seeded = true
	s.view = buildView(s.game, s.events, s.elapsed)

	changed := !wasSeeded ||
		prev.HomeScore != next.HomeScore ||
		prev.AwayScore != next.AwayScore ||
		prev.Status != next.Status ||
		prev.StartTimestamp != next.StartTimestamp
	if !changed {
		return false
	}

	s.publish(Notification{Kind: NotificationGameUpdated})
	if wasSeeded && prev.Status != next.Status {
		s.logger.Info("game status changed", "game_id", next.ID, "from", prev.Status, "to", next.Status)
		s.publish(Notification{Kind: NotificationStatusChanged, PreviousStatus: prev.Status})
	}
	return true
}

// ApplyEvent appends e to the log unless it is invalid or already known.
func (s *GameStateStore) ApplyEvent(e matchevent.Event) bool {
	if err := e.Validate(); err != nil {
		s.logger.Warn("event dropped", "event_id", e.ID, "reason", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded && e.GameID != 0 && e.GameID != s.game.ID {
		s.logger.Warn("event dropped", "event_id", e.ID, "event_game_id", e.GameID, "game_id", s.game.ID, "reason", "game id mismatch")
		return false
	}
	if _, dup := s.seen[e.ID]; dup {
		s.logger.Debug("duplicate event ignored", "event_id", e.ID)
		return false
	}
	s.seen[e.ID] = struct{}{}

	e.TeamColors = slices.Clone(e.TeamColors)
	idx := sort.Search(len(s.events), func(i int) bool { return s.events[i].ID < e.ID })
	s.events = slices.Insert(s.events, idx, e)
	s.view = buildView(s.game, s.events, s.elapsed)

	added := e
	s.publish(Notification{Kind: NotificationEventAdded, Event: &added})
	return true
}

// Tick records elapsed minutes from the match clock. Ticks outside live play
// and ticks that do not advance the minute are ignored.
func (s *GameStateStore) Tick(elapsedMinutes int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.game.Status.IsLive() || elapsedMinutes <= s.elapsed {
		return false
	}
	s.elapsed = elapsedMinutes
	s.view = buildView(s.game, s.events, s.elapsed)
	s.publish(Notification{Kind: NotificationClockTicked})
	return true
}

func (s *GameStateStore) CurrentView() GameStateView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Game returns the latest known game including rosters.
func (s *GameStateStore) Game() game.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game
}

// Events returns a copy of the log, newest first.
func (s *GameStateStore) Events() []matchevent.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// Subscribe returns a subscription receiving every notification published
// after the call. Slow subscribers lose notifications rather than block
// writers; CurrentView is always authoritative.
func (s *GameStateStore) Subscribe(buffer int) *eventbus.Subscription[Notification] {
	return s.bus.Subscribe(buffer)
}

// Close ends all subscriptions.
func (s *GameStateStore) Close() {
	s.bus.Close()
}

// publish must be called with mu held so subscribers see notifications in
// state order.
func (s *GameStateStore) publish(n Notification) {
	n.GameID = s.game.ID
	n.View = s.view
	s.bus.Publish(n)
}

func mergeTeam(prev, next game.TeamRef) game.TeamRef {
	if next.ID == 0 && strings.TrimSpace(next.Name) == "" && len(next.Players) == 0 {
		return prev
	}
	merged := next
	if strings.TrimSpace(merged.Name) == "" {
		merged.Name = prev.Name
	}
	if strings.TrimSpace(merged.Color) == "" {
		merged.Color = prev.Color
	}
	if len(merged.Players) == 0 {
		merged.Players = prev.Players
	}
	if merged.ID == 0 {
		merged.ID = prev.ID
	}
	return merged
}
