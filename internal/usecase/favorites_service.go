package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchday/internal/domain/favorites"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const favoritesKeyPrefix = "favorites."

type NavigationTarget string

const NavigateMyTeam NavigationTarget = "my_team"

// NavigationSignal asks the UI shell to switch tabs.
type NavigationSignal struct {
	Target NavigationTarget
	TeamID string
}

type FavoritesService struct {
	store      favorites.Store
	navigation *eventbus.Bus[NavigationSignal]
	logger     *logging.Logger

	// serializes read-modify-write on set-valued kinds
	mu sync.Mutex
}

func NewFavoritesService(store favorites.Store, navigation *eventbus.Bus[NavigationSignal], logger *logging.Logger) *FavoritesService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FavoritesService{
		store:      store,
		navigation: navigation,
		logger:     logger.With("component", "favorites"),
	}
}

func (s *FavoritesService) FavoriteTeam(ctx context.Context) (string, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.FavoriteTeam")
	defer span.End()

	value, ok, err := s.store.Get(ctx, favoritesKey(favorites.KindTeam))
	if err != nil {
		return "", false, fmt.Errorf("%w: get favorite team: %v", ErrDependencyUnavailable, err)
	}
	return value, ok && value != "", nil
}

// SetFavoriteTeam stores teamID and signals the shell to open the my-team tab.
func (s *FavoritesService) SetFavoriteTeam(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.SetFavoriteTeam")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if err := s.store.Set(ctx, favoritesKey(favorites.KindTeam), teamID); err != nil {
		return fmt.Errorf("%w: set favorite team: %v", ErrDependencyUnavailable, err)
	}

	if s.navigation != nil {
		s.navigation.Publish(NavigationSignal{Target: NavigateMyTeam, TeamID: teamID})
	}
	s.logger.InfoContext(ctx, "favorite team set", "team_id", teamID)
	return nil
}

func (s *FavoritesService) ClearFavoriteTeam(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.ClearFavoriteTeam")
	defer span.End()

	if err := s.store.Delete(ctx, favoritesKey(favorites.KindTeam)); err != nil {
		return fmt.Errorf("%w: clear favorite team: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

// List returns the ids stored under kind in ascending order. The team kind
// yields zero or one id.
func (s *FavoritesService) List(ctx context.Context, kind favorites.Kind) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.List")
	defer span.End()

	if !kind.Multi() {
		team, ok, err := s.FavoriteTeam(ctx)
		if err != nil || !ok {
			return []string{}, err
		}
		return []string{team}, nil
	}
	return s.loadSet(ctx, kind)
}

func (s *FavoritesService) Add(ctx context.Context, kind favorites.Kind, id string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.Add")
	defer span.End()

	return s.modifySet(ctx, kind, id, func(ids []string, id string) []string {
		if slices.Contains(ids, id) {
			return ids
		}
		ids = append(ids, id)
		slices.Sort(ids)
		return ids
	})
}

func (s *FavoritesService) Remove(ctx context.Context, kind favorites.Kind, id string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FavoritesService.Remove")
	defer span.End()

	return s.modifySet(ctx, kind, id, func(ids []string, id string) []string {
		return slices.DeleteFunc(ids, func(v string) bool { return v == id })
	})
}

func (s *FavoritesService) modifySet(ctx context.Context, kind favorites.Kind, id string, apply func([]string, string) []string) ([]string, error) {
	id = strings.TrimSpace(id)
	if !kind.Multi() {
		return nil, fmt.Errorf("%w: %s favorites hold a single value", ErrInvalidInput, kind)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %s id is required", ErrInvalidInput, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadSet(ctx, kind)
	if err != nil {
		return nil, err
	}
	ids = apply(ids, id)

	key := favoritesKey(kind)
	if len(ids) == 0 {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("%w: delete %s favorites: %v", ErrDependencyUnavailable, kind, err)
		}
		return []string{}, nil
	}
	raw, err := sonic.MarshalString(ids)
	if err != nil {
		return nil, fmt.Errorf("encode %s favorites: %w", kind, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("%w: save %s favorites: %v", ErrDependencyUnavailable, kind, err)
	}
	return ids, nil
}

func (s *FavoritesService) loadSet(ctx context.Context, kind favorites.Kind) ([]string, error) {
	raw, ok, err := s.store.Get(ctx, favoritesKey(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s favorites: %v", ErrDependencyUnavailable, kind, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}

	var ids []string
	if err := sonic.UnmarshalString(raw, &ids); err != nil {
		s.logger.WarnContext(ctx, "stored favorites are corrupt, starting empty", "kind", string(kind), "error", err)
		return []string{}, nil
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func favoritesKey(kind favorites.Kind) string {
	return favoritesKeyPrefix + string(kind)
}
