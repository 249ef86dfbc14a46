// Package mutation applies optimistic writes through the query cache. A
// mutation speculates into the cache, commits remotely, then either confirms
// or restores the previous value. The record kind is always invalidated
// afterwards so the next read reconciles with the server.
package mutation

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/errors"
	"github.com/julianstephens/steady/internal/instrument"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/querycache"
)

// Mutation describes one optimistic write against the value cached at Key.
type Mutation[T any] struct {
	Key querycache.Key

	// Apply computes the speculative value from the cached one. ok is false
	// when nothing was cached. Apply must not modify prev in place.
	Apply func(prev T, ok bool) T

	// Commit performs the remote write.
	Commit func(ctx context.Context) error

	// OnSuccess runs after a successful commit, never before.
	OnSuccess func()

	// OnError runs after the rollback of a failed commit.
	OnError func(err error)

	// Invalidates lists extra record kinds to mark stale once settled.
	Invalidates []constants.RecordKind
}

// Coordinator runs mutations against one cache.
type Coordinator struct {
	cache *querycache.Cache
	now   func() time.Time
}

func New(cache *querycache.Cache) *Coordinator {
	return &Coordinator{cache: cache, now: time.Now}
}

// Cache returns the cache mutations are applied to.
func (c *Coordinator) Cache() *querycache.Cache {
	return c.cache
}

// Execute runs m to completion and returns the commit error, if any. The
// cache already reflects the rollback when an error is returned.
func Execute[T any](ctx context.Context, c *Coordinator, m Mutation[T]) error {
	return <-Start(ctx, c, m)
}

// Start speculates synchronously and commits on a new goroutine. The returned
// channel yields the commit error (nil on success) once the mutation has
// settled.
func Start[T any](ctx context.Context, c *Coordinator, m Mutation[T]) <-chan error {
	out := make(chan error, 1)
	if m.Commit == nil {
		out <- fmt.Errorf("mutation on %s has no commit", m.Key)
		return out
	}

	snap := speculate(c.cache, m)
	go func() {
		out <- settle(ctx, c, m, snap)
	}()
	return out
}

// snapshot is the cache state a mutation replaced.
type snapshot struct {
	before    querycache.Entry
	hadBefore bool
	gen       uint64
}

func speculate[T any](cache *querycache.Cache, m Mutation[T]) snapshot {
	var apply func(any, bool) any
	if m.Apply != nil {
		apply = func(current any, ok bool) any {
			var prev T
			hasPrev := false
			if ok {
				prev, hasPrev = current.(T)
			}
			return m.Apply(prev, hasPrev)
		}
	}
	// In-flight reads for the key are canceled so they cannot overwrite
	// the speculative value.
	before, ok, gen := cache.Speculate(m.Key, apply)
	return snapshot{before: before, hadBefore: ok, gen: gen}
}

func settle[T any](ctx context.Context, c *Coordinator, m Mutation[T], snap snapshot) error {
	kind := string(m.Key.Kind)
	start := c.now()
	err := m.Commit(ctx)
	elapsed := c.now().Sub(start).Seconds()

	if err != nil {
		if !c.cache.Rollback(m.Key, snap.gen, snap.before, snap.hadBefore) {
			logger.Debug("Key rewritten since speculation; leaving it for refetch", "key", m.Key.String())
		}
		logger.Warn("Optimistic write rolled back", "key", m.Key.String(), "error", err)
		instrument.Mutation(kind, instrument.MutationRolledBack, elapsed)
		if m.OnError != nil {
			errors.Contain("mutation.onError", func() error {
				m.OnError(err)
				return nil
			})
		}
	} else {
		instrument.Mutation(kind, instrument.MutationCommitted, elapsed)
		if m.OnSuccess != nil {
			errors.Contain("mutation.onSuccess", func() error {
				m.OnSuccess()
				return nil
			})
		}
	}

	c.cache.InvalidateKind(m.Key.Kind)
	for _, k := range m.Invalidates {
		c.cache.InvalidateKind(k)
	}

	if err != nil {
		return fmt.Errorf("failed to commit %s: %w", m.Key, err)
	}
	return nil
}
