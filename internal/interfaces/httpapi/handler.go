package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	liveactivityinfra "github.com/riskibarqy/matchday/internal/infrastructure/liveactivity"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const defaultStreamKeepAlive = 15 * time.Second

// ActivitySurface is the read side of the in-process live-activity host.
type ActivitySurface interface {
	Activity(gameID int64) (liveactivityinfra.Activity, bool)
	Activities() []liveactivityinfra.Activity
	Dismiss(gameID int64) bool
}

type Handler struct {
	sessionManager     *usecase.SessionManager
	favoritesService   *usecase.FavoritesService
	playerStatsService *usecase.PlayerStatsService
	activities         ActivitySurface
	navigation         *eventbus.Bus[usecase.NavigationSignal]
	logger             *logging.Logger
	validator          *validator.Validate
	keepAlive          time.Duration
}

func NewHandler(
	sessionManager *usecase.SessionManager,
	favoritesService *usecase.FavoritesService,
	playerStatsService *usecase.PlayerStatsService,
	activities ActivitySurface,
	navigation *eventbus.Bus[usecase.NavigationSignal],
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		sessionManager:     sessionManager,
		favoritesService:   favoritesService,
		playerStatsService: playerStatsService,
		activities:         activities,
		navigation:         navigation,
		logger:             logger,
		validator:          validator.New(),
		keepAlive:          defaultStreamKeepAlive,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeRequest(r *http.Request, out any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseGameID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("gameID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: game id must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	tagGame(r.Context(), id)
	return id, nil
}
