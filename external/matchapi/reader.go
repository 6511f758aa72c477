package matchapi

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/game"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// streamReader turns one SSE stream into a channel of decoded values. Values
// are delivered in arrival order; malformed messages are logged and skipped.
type streamReader[T any] struct {
	conn   *streamConn
	path   func(gameID int64) string
	decode func(gameID int64, msg sseMessage) (T, error)
	// key returns a dedup key; readers without one deliver everything.
	key    func(T) (int64, bool)
	logger *logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	seen   map[int64]struct{}
	lastID string
}

// Open connects and returns a channel that closes when the stream is closed
// for good: by ctx, by Close, or by the server. Opening again replaces the
// previous connection; opening after Close yields a closed channel.
func (r *streamReader[T]) Open(ctx context.Context, gameID int64) <-chan T {
	out := make(chan T)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(out)
		return out
	}
	if r.cancel != nil {
		r.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	logger := r.logger.ForGame(gameID)
	go func() {
		defer close(out)
		defer cancel()

		err := r.conn.run(runCtx, r.path(gameID), r.lastEventID, func(msg sseMessage) {
			if msg.Event != "" && msg.Event != "message" && msg.Event != "update" {
				logger.Debug("ignoring stream message", "event", msg.Event)
				return
			}
			value, err := r.decode(gameID, msg)
			if err != nil {
				logger.Warn("dropping malformed stream message", "payload", abbreviateBody(msg.Data), "error", err)
				return
			}
			if !r.admit(value, msg.ID) {
				return
			}
			select {
			case out <- value:
			case <-runCtx.Done():
			}
		})
		if err != nil && runCtx.Err() == nil {
			logger.Warn("stream reader stopped", "error", err)
			return
		}
		logger.Debug("stream reader stopped")
	}()

	return out
}

// Close cancels the in-flight connection. Safe to call more than once.
func (r *streamReader[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *streamReader[T]) admit(value T, sseID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.key == nil {
		if sseID != "" {
			r.lastID = sseID
		}
		return true
	}
	k, ok := r.key(value)
	if !ok {
		return true
	}
	if _, dup := r.seen[k]; dup {
		r.logger.Debug("dropping replayed message", "id", k)
		return false
	}
	r.seen[k] = struct{}{}
	if sseID != "" {
		r.lastID = sseID
	} else {
		r.lastID = strconv.FormatInt(k, 10)
	}
	return true
}

func (r *streamReader[T]) lastEventID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastID
}

// EventStreamReader delivers match events from /events/stream/{gameID}.
// Events already delivered by this reader are not delivered again after a
// reconnect.
type EventStreamReader struct {
	*streamReader[matchevent.Event]
}

func newEventStreamReader(conn *streamConn) *EventStreamReader {
	return &EventStreamReader{&streamReader[matchevent.Event]{
		conn:   conn,
		path:   func(gameID int64) string { return fmt.Sprintf("/events/stream/%d", gameID) },
		decode: decodeStreamEvent,
		key:    func(e matchevent.Event) (int64, bool) { return e.ID, e.ID > 0 },
		logger: conn.logger,
		seen:   make(map[int64]struct{}),
	}}
}

func decodeStreamEvent(gameID int64, msg sseMessage) (matchevent.Event, error) {
	e, err := decodeEvent(msg.Data)
	if err != nil {
		return matchevent.Event{}, err
	}
	if e.GameID != 0 && e.GameID != gameID {
		return matchevent.Event{}, fmt.Errorf("event %d belongs to game %d", e.ID, e.GameID)
	}
	return e, nil
}

// SnapshotStreamReader delivers full game snapshots from
// /games/stream/{gameID}; the latest one wins.
type SnapshotStreamReader struct {
	*streamReader[game.Game]
}

func newSnapshotStreamReader(conn *streamConn) *SnapshotStreamReader {
	return &SnapshotStreamReader{&streamReader[game.Game]{
		conn:   conn,
		path:   func(gameID int64) string { return fmt.Sprintf("/games/stream/%d", gameID) },
		decode: decodeStreamSnapshot,
		logger: conn.logger,
	}}
}

func decodeStreamSnapshot(gameID int64, msg sseMessage) (game.Game, error) {
	g, err := decodeGame(msg.Data)
	if err != nil {
		return game.Game{}, err
	}
	if g.ID != gameID {
		return game.Game{}, fmt.Errorf("snapshot belongs to game %d", g.ID)
	}
	return g, nil
}
