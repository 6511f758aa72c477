package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) ListLiveActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveActivities")
	defer span.End()

	if h.activities == nil {
		writeSuccess(ctx, w, http.StatusOK, []liveActivityDTO{})
		return
	}

	activities := h.activities.Activities()
	items := make([]liveActivityDTO, 0, len(activities))
	for _, a := range activities {
		items = append(items, liveActivityToDTO(ctx, a))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLiveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLiveActivity")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.activities == nil {
		writeError(ctx, w, fmt.Errorf("%w: no live activity for game %d", usecase.ErrNotFound, gameID))
		return
	}

	activity, ok := h.activities.Activity(gameID)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no live activity for game %d", usecase.ErrNotFound, gameID))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, liveActivityToDTO(ctx, activity))
}

// DismissLiveActivity removes the surface the way a user swipe would. The
// owning session stays attached.
func (h *Handler) DismissLiveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DismissLiveActivity")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.activities == nil || !h.activities.Dismiss(gameID) {
		writeError(ctx, w, fmt.Errorf("%w: no live activity for game %d", usecase.ErrNotFound, gameID))
		return
	}

	h.logger.InfoContext(ctx, "live activity dismissed", "game_id", gameID)
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"game_id": gameID, "dismissed": true})
}

func (h *Handler) GetPlayerGameStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerGameStats")
	defer span.End()

	gameID, err := parseGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	playerID := strings.TrimSpace(r.PathValue("playerID"))

	stats, err := h.playerStatsService.GetGameStats(ctx, gameID, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player game stats failed", "game_id", gameID, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerGameStatsToDTO(ctx, stats))
}
