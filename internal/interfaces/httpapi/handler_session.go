package httpapi

import (
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/internal/usecase"
)

const notificationBuffer = 64

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSessions")
	defer span.End()

	ids := h.sessionManager.GameIDs()
	items := make([]sessionDTO, 0, len(ids))
	for _, id := range ids {
		session, err := h.sessionManager.Session(id)
		if err != nil {
			// Detached between listing and lookup.
			continue
		}
		items = append(items, sessionDTO{
			GameID:       id,
			State:        string(session.State()),
			LiveActivity: string(session.BridgeState()),
			View:         gameStateViewToDTO(ctx, session.View()),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AttachSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AttachSession")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.sessionManager.Attach(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "attach session failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := sessionDTO{
		GameID: gameID,
		View:   gameStateViewToDTO(ctx, view),
	}
	if session, err := h.sessionManager.Session(gameID); err == nil {
		dto.State = string(session.State())
		dto.LiveActivity = string(session.BridgeState())
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) DetachSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DetachSession")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	h.sessionManager.Detach(ctx, gameID)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"game_id": gameID, "state": string(usecase.SessionDetached)})
}

func (h *Handler) GetSessionView(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSessionView")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.sessionManager.View(gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameStateViewToDTO(ctx, view))
}

func (h *Handler) ListSessionEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSessionEvents")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.sessionManager.Events(gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]matchEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, matchEventToDTO(ctx, e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

// StreamSessionNotifications sends the current view as a "view" frame, then
// one frame per store notification named after its kind. The stream ends when
// the client goes away or the session is detached.
func (h *Handler) StreamSessionNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamSessionNotifications")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sub, err := h.sessionManager.Subscribe(gameID, notificationBuffer)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer sub.Cancel()

	view, err := h.sessionManager.View(gameID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stream, err := openEventStream(w)
	if err != nil {
		h.logger.WarnContext(ctx, "open notification stream failed", "game_id", gameID, "error", err)
		return
	}
	if err := stream.send("view", gameStateViewToDTO(ctx, view)); err != nil {
		return
	}

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C:
			if !ok {
				return
			}
			if err := stream.send(string(n.Kind), notificationToDTO(ctx, n)); err != nil {
				h.logger.DebugContext(ctx, "notification stream write failed", "game_id", gameID, "error", err)
				return
			}
		case <-keepAlive.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}
