package querycache

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/instrument"
)

// Query returns the cached value at key when it is younger than staleAfter
// and not invalidated; otherwise it runs fetch and caches the result.
// Concurrent Queries for the same key share a single fetch. A negative
// staleAfter never expires.
//
// If the key is written or canceled while fetch runs, the fetched value is
// not stored and the caller receives the newer cached value instead.
func Query[T any](ctx context.Context, c *Cache, key Key, staleAfter time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	kind := string(key.Kind)

	c.mu.Lock()
	if v, ok := c.freshLocked(key, staleAfter); ok {
		if typed, ok := v.(T); ok {
			c.mu.Unlock()
			instrument.CacheLookup(kind, instrument.LookupHit)
			return typed, nil
		}
	}

	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		instrument.CacheLookup(kind, instrument.LookupJoined)
		return wait[T](ctx, cl)
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	cl := &call{gen: c.gens[key], done: make(chan struct{}), cancel: cancel}
	c.inflight[key] = cl
	c.mu.Unlock()
	instrument.CacheLookup(kind, instrument.LookupMiss)

	value, err := fetch(fetchCtx)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	superseded := c.gens[key] != cl.gen
	if c.inflight[key] == cl {
		delete(c.inflight, key)
	}
	switch {
	case superseded:
		instrument.CacheDiscard(kind)
		if cur, ok := c.entries[key]; ok {
			if typed, ok := cur.Value.(T); ok {
				value, err = typed, nil
			}
		}
	case err != nil:
		instrument.CacheFetchError(kind)
	default:
		c.setLocked(key, value)
	}
	cl.value, cl.err = value, err
	close(cl.done)
	return value, err
}

// wait blocks until the shared fetch finishes and returns what its owner got.
func wait[T any](ctx context.Context, cl *call) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-cl.done:
	}
	if cl.err != nil {
		return zero, cl.err
	}
	typed, ok := cl.value.(T)
	if !ok {
		return zero, fmt.Errorf("cached value for shared fetch has type %T", cl.value)
	}
	return typed, nil
}

func (c *Cache) freshLocked(key Key, staleAfter time.Duration) (any, bool) {
	e, ok := c.entries[key]
	if !ok || e.Invalidated {
		return nil, false
	}
	if staleAfter >= 0 && c.now().Sub(e.FetchedAt) >= staleAfter {
		return nil, false
	}
	return e.Value, true
}
