package resilience

import (
	"context"
	"sync"
)

// SingleFlight collapses concurrent loads of the same key into one call.
// The shared call runs detached from any single caller's cancellation and is
// only cancelled once every waiter has given up.
type SingleFlight[V any] struct {
	mu    sync.Mutex
	calls map[string]*flightCall[V]
}

type flightCall[V any] struct {
	done    chan struct{}
	cancel  context.CancelFunc
	waiters int
	val     V
	err     error
}

// Do returns fn's result for key. shared reports whether the caller joined a
// call started by someone else. A caller whose ctx ends stops waiting and
// gets ctx.Err().
func (g *SingleFlight[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flightCall[V])
	}

	c, ok := g.calls[key]
	if ok {
		c.waiters++
		shared = true
	} else {
		callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c = &flightCall[V]{done: make(chan struct{}), cancel: cancel, waiters: 1}
		g.calls[key] = c
		go g.run(callCtx, key, c, fn)
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err, shared
	case <-ctx.Done():
		g.leave(key, c)
		var zero V
		return zero, ctx.Err(), shared
	}
}

func (g *SingleFlight[V]) run(ctx context.Context, key string, c *flightCall[V], fn func(context.Context) (V, error)) {
	defer func() {
		c.cancel()
		g.mu.Lock()
		if g.calls[key] == c {
			delete(g.calls, key)
		}
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn(ctx)
}

func (g *SingleFlight[V]) leave(key string, c *flightCall[V]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c.waiters--
	if c.waiters > 0 {
		return
	}
	if g.calls[key] == c {
		delete(g.calls, key)
	}
	c.cancel()
}
