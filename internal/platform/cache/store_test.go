package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if v != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)
	store := NewStore[int](30 * time.Second)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "stats:1:p9", 3)
	if v, ok := store.Get(context.Background(), "stats:1:p9"); !ok || v != 3 {
		t.Fatalf("expected cached value, got %v ok=%v", v, ok)
	}

	now = now.Add(31 * time.Second)
	if _, ok := store.Get(context.Background(), "stats:1:p9"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_ZeroTTLKeepsEntriesAndListsKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore[string](0)
	store.Set(ctx, "favorites:player:b", "1")
	store.Set(ctx, "favorites:player:a", "1")
	store.Set(ctx, "favorites:stadium:x", "1")

	keys := store.Keys(ctx, "favorites:player:")
	if len(keys) != 2 || keys[0] != "favorites:player:a" || keys[1] != "favorites:player:b" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	store.Delete(ctx, "favorites:player:a")
	if _, ok := store.Get(ctx, "favorites:player:a"); ok {
		t.Fatalf("expected deleted key to be gone")
	}
}

func TestStore_GetOrLoad_PropagatesLoaderError(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	boom := errors.New("upstream down")
	_, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("failed loads must not be cached")
	}
}

func TestBoundedStore_EvictsExpiredThenOldest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)
	store := NewBoundedStore[int](time.Minute, 2)
	store.now = func() time.Time { return now }

	store.Set(ctx, "game:id:1", 1)
	now = now.Add(10 * time.Second)
	store.Set(ctx, "game:id:2", 2)
	now = now.Add(10 * time.Second)

	store.Set(ctx, "game:id:3", 3)
	if store.Len() != 2 {
		t.Fatalf("expected bound of 2 entries, got %d", store.Len())
	}
	if _, ok := store.Get(ctx, "game:id:1"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}

	// Overwriting an existing key never evicts.
	store.Set(ctx, "game:id:3", 30)
	if v, ok := store.Get(ctx, "game:id:2"); !ok || v != 2 {
		t.Fatalf("expected game 2 to survive an overwrite, got %v ok=%v", v, ok)
	}

	// Once game 2 expires it goes before the younger game 3.
	now = now.Add(55 * time.Second)
	store.Set(ctx, "game:id:4", 4)
	if _, ok := store.Get(ctx, "game:id:3"); !ok {
		t.Fatalf("expected game 3 to be kept while an expired entry could go")
	}
	if _, ok := store.Get(ctx, "game:id:2"); ok {
		t.Fatalf("expected expired game 2 to be evicted")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
