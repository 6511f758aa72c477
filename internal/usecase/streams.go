package usecase

import (
	"context"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

// EventSource delivers a game's events in arrival order. The channel closes
// when the stream ends for good or the source is closed; Open may be called
// again after a natural close, but not after Close.
type EventSource interface {
	Open(ctx context.Context, gameID int64) <-chan matchevent.Event
	Close()
}

// SnapshotSource delivers full game snapshots with the same lifecycle as
// EventSource.
type SnapshotSource interface {
	Open(ctx context.Context, gameID int64) <-chan game.Game
	Close()
}
