package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/matchday/internal/domain/favorites"
	favoritesmock "github.com/riskibarqy/matchday/internal/mocks/domain/favorites"
	"github.com/riskibarqy/matchday/internal/platform/eventbus"
)

type mapStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string)}
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func TestFavoritesService_SetTeamSignalsNavigation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	nav := eventbus.New[NavigationSignal]()
	sub := nav.Subscribe(1)
	service := NewFavoritesService(newMapStore(), nav, testLogger())

	require.NoError(t, service.SetFavoriteTeam(ctx, " 11 "))

	signal := <-sub.C
	assert.Equal(t, NavigateMyTeam, signal.Target)
	assert.Equal(t, "11", signal.TeamID)

	team, ok, err := service.FavoriteTeam(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "11", team)

	ids, err := service.List(ctx, favorites.KindTeam)
	require.NoError(t, err)
	assert.Equal(t, []string{"11"}, ids)

	require.NoError(t, service.ClearFavoriteTeam(ctx))
	_, ok, err = service.FavoriteTeam(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFavoritesService_SetTeamRequiresID(t *testing.T) {
	t.Parallel()

	service := NewFavoritesService(newMapStore(), nil, testLogger())
	assert.ErrorIs(t, service.SetFavoriteTeam(context.Background(), "  "), ErrInvalidInput)
}

func TestFavoritesService_PlayerSetAddRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewFavoritesService(newMapStore(), nil, testLogger())

	_, err := service.Add(ctx, favorites.KindPlayer, "p10")
	require.NoError(t, err)
	_, err = service.Add(ctx, favorites.KindPlayer, "p05")
	require.NoError(t, err)
	ids, err := service.Add(ctx, favorites.KindPlayer, "p10")
	require.NoError(t, err)
	assert.Equal(t, []string{"p05", "p10"}, ids)

	ids, err = service.Remove(ctx, favorites.KindPlayer, "p05")
	require.NoError(t, err)
	assert.Equal(t, []string{"p10"}, ids)

	stadiums, err := service.List(ctx, favorites.KindStadium)
	require.NoError(t, err)
	assert.Empty(t, stadiums)

	ids, err = service.Remove(ctx, favorites.KindPlayer, "p10")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavoritesService_ConcurrentAddsKeepEveryID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewFavoritesService(newMapStore(), nil, testLogger())

	var wg sync.WaitGroup
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = service.Add(ctx, favorites.KindStadium, id)
		}()
	}
	wg.Wait()

	ids, err := service.List(ctx, favorites.KindStadium)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4", "s5", "s6"}, ids)
}

func TestFavoritesService_TeamKindIsNotASet(t *testing.T) {
	t.Parallel()

	service := NewFavoritesService(newMapStore(), nil, testLogger())
	_, err := service.Add(context.Background(), favorites.KindTeam, "11")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFavoritesService_StoreFailureIsDependencyError(t *testing.T) {
	t.Parallel()

	store := favoritesmock.NewStore(t)
	store.On("Get", mock.Anything, "favorites.player").Return("", false, errors.New("disk full")).Once()

	service := NewFavoritesService(store, nil, testLogger())
	_, err := service.List(context.Background(), favorites.KindPlayer)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestFavoritesService_CorruptValueStartsEmpty(t *testing.T) {
	t.Parallel()

	store := newMapStore()
	store.values["favorites.stadium"] = "not-json"
	service := NewFavoritesService(store, nil, testLogger())

	ids, err := service.Add(context.Background(), favorites.KindStadium, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}
