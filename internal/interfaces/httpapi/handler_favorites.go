package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/favorites"
	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) GetFavoriteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFavoriteTeam")
	defer span.End()

	teamID, ok, err := h.favoritesService.FavoriteTeam(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get favorite team failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoriteTeamDTO{TeamID: teamID, Set: ok})
}

func (h *Handler) SetFavoriteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetFavoriteTeam")
	defer span.End()

	var req favoriteTeamRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.favoritesService.SetFavoriteTeam(ctx, req.TeamID); err != nil {
		h.logger.WarnContext(ctx, "set favorite team failed", "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoriteTeamDTO{TeamID: req.TeamID, Set: true})
}

func (h *Handler) ClearFavoriteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearFavoriteTeam")
	defer span.End()

	if err := h.favoritesService.ClearFavoriteTeam(ctx); err != nil {
		h.logger.WarnContext(ctx, "clear favorite team failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoriteTeamDTO{})
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFavorites")
	defer span.End()

	kind, err := parseFavoriteKind(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.favoritesService.List(ctx, kind)
	if err != nil {
		h.logger.WarnContext(ctx, "list favorites failed", "kind", string(kind), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoritesDTO{Kind: string(kind), IDs: ids})
}

func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddFavorite")
	defer span.End()

	kind, err := parseFavoriteKind(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.favoritesService.Add(ctx, kind, r.PathValue("id"))
	if err != nil {
		h.logger.WarnContext(ctx, "add favorite failed", "kind", string(kind), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoritesDTO{Kind: string(kind), IDs: ids})
}

func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveFavorite")
	defer span.End()

	kind, err := parseFavoriteKind(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.favoritesService.Remove(ctx, kind, r.PathValue("id"))
	if err != nil {
		h.logger.WarnContext(ctx, "remove favorite failed", "kind", string(kind), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, favoritesDTO{Kind: string(kind), IDs: ids})
}

// StreamNavigation relays shell navigation signals, e.g. the jump to the
// my-team tab after a favourite team is chosen.
func (h *Handler) StreamNavigation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamNavigation")
	defer span.End()

	if h.navigation == nil {
		writeError(ctx, w, fmt.Errorf("%w: navigation signals are not wired", usecase.ErrDependencyUnavailable))
		return
	}

	sub := h.navigation.Subscribe(8)
	defer sub.Cancel()

	stream, err := openEventStream(w)
	if err != nil {
		h.logger.WarnContext(ctx, "open navigation stream failed", "error", err)
		return
	}

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case signal, ok := <-sub.C:
			if !ok {
				return
			}
			if err := stream.send("navigate", navigationDTO{Target: string(signal.Target), TeamID: signal.TeamID}); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := stream.ping(); err != nil {
				return
			}
		}
	}
}

func parseFavoriteKind(r *http.Request) (favorites.Kind, error) {
	kind, err := favorites.ParseKind(r.PathValue("kind"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return kind, nil
}
