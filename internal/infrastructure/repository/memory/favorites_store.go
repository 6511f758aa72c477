package memory

import (
	"context"

	"github.com/riskibarqy/matchday/internal/platform/cache"
)

// FavoritesStore keeps favourites for the lifetime of the process.
type FavoritesStore struct {
	entries *cache.Store[string]
}

func NewFavoritesStore() *FavoritesStore {
	return &FavoritesStore{entries: cache.NewStore[string](0)}
}

func (s *FavoritesStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := s.entries.Get(ctx, key)
	return value, ok, nil
}

func (s *FavoritesStore) Set(ctx context.Context, key, value string) error {
	s.entries.Set(ctx, key, value)
	return nil
}

func (s *FavoritesStore) Delete(ctx context.Context, key string) error {
	s.entries.Delete(ctx, key)
	return nil
}

// Keys lists stored keys under prefix.
func (s *FavoritesStore) Keys(ctx context.Context, prefix string) []string {
	return s.entries.Keys(ctx, prefix)
}
