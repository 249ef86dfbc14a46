package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/querycache"
)

func flip(prev bool, _ bool) bool { return !prev }

func TestSpeculativeValueVisibleBeforeCommit(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindDailyTodos, "2024-03-01")
	cache.Set(key, false)

	release := make(chan struct{})
	done := Start(context.Background(), coord, Mutation[bool]{
		Key:   key,
		Apply: flip,
		Commit: func(context.Context) error {
			<-release
			return nil
		},
	})

	e, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, true, e.Value)

	close(release)
	require.NoError(t, <-done)
	e, _ = cache.Get(key)
	assert.Equal(t, true, e.Value)
	assert.True(t, e.Invalidated)
}

func TestFailedCommitRestoresPreviousValue(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindDailyTodos, "2024-03-01")
	other := querycache.NewKey(constants.KindDailyTodos, "2024-02-29")
	cache.Set(key, false)
	cache.Set(other, true)

	boom := errors.New("network down")
	var successes, failures int
	err := Execute(context.Background(), coord, Mutation[bool]{
		Key:       key,
		Apply:     flip,
		Commit:    func(context.Context) error { return boom },
		OnSuccess: func() { successes++ },
		OnError: func(err error) {
			assert.ErrorIs(t, err, boom)
			failures++
		},
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, successes)
	assert.Equal(t, 1, failures)

	e, _ := cache.Get(key)
	assert.Equal(t, false, e.Value)
	assert.True(t, e.Invalidated)

	e, _ = cache.Get(other)
	assert.True(t, e.Invalidated, "whole kind is invalidated")
}

func TestFailedCommitWithoutPriorValueRemovesSpeculation(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindJournalEntry, "2024-03-01")

	err := Execute(context.Background(), coord, Mutation[string]{
		Key: key,
		Apply: func(prev string, ok bool) string {
			assert.False(t, ok)
			return "draft"
		},
		Commit: func(context.Context) error { return errors.New("rejected") },
	})
	assert.Error(t, err)
	_, ok := cache.Get(key)
	assert.False(t, ok)
}

func TestOverlappingMutationsKeepLaterSpeculation(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindDailyTodos, "2024-03-01")
	cache.Set(key, 0)
	inc := func(prev int, _ bool) int { return prev + 1 }

	releaseFirst := make(chan struct{})
	first := Start(context.Background(), coord, Mutation[int]{
		Key:   key,
		Apply: inc,
		Commit: func(context.Context) error {
			<-releaseFirst
			return errors.New("rejected")
		},
	})
	releaseSecond := make(chan struct{})
	second := Start(context.Background(), coord, Mutation[int]{
		Key:   key,
		Apply: inc,
		Commit: func(context.Context) error {
			<-releaseSecond
			return nil
		},
	})

	e, _ := cache.Get(key)
	assert.Equal(t, 2, e.Value, "second applies on top of first")

	close(releaseFirst)
	assert.Error(t, <-first)
	e, _ = cache.Get(key)
	assert.Equal(t, 2, e.Value, "first's rollback must not erase second")
	assert.True(t, e.Invalidated)

	close(releaseSecond)
	require.NoError(t, <-second)
}

func TestSuccessHookRunsOnceAfterCommit(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindDailyTodos, "2024-03-01")

	committed := false
	calls := 0
	err := Execute(context.Background(), coord, Mutation[bool]{
		Key:   key,
		Apply: flip,
		Commit: func(context.Context) error {
			committed = true
			return nil
		},
		OnSuccess: func() {
			assert.True(t, committed)
			calls++
		},
		Invalidates: []constants.RecordKind{constants.KindJournalRecent},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPanickingHookIsContained(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	key := querycache.NewKey(constants.KindDailyTodos, "2024-03-01")

	err := Execute(context.Background(), coord, Mutation[bool]{
		Key:       key,
		Apply:     flip,
		Commit:    func(context.Context) error { return nil },
		OnSuccess: func() { panic("sink exploded") },
	})
	assert.NoError(t, err)
}

func TestExtraKindsInvalidated(t *testing.T) {
	cache := querycache.New()
	coord := New(cache)
	recent := querycache.NewKey(constants.KindJournalRecent, "7")
	cache.Set(recent, []string{"x"})

	err := Execute(context.Background(), coord, Mutation[string]{
		Key:         querycache.NewKey(constants.KindJournalEntry, "2024-03-01"),
		Apply:       func(string, bool) string { return "entry" },
		Commit:      func(context.Context) error { return nil },
		Invalidates: []constants.RecordKind{constants.KindJournalRecent},
	})
	require.NoError(t, err)
	e, _ := cache.Get(recent)
	assert.True(t, e.Invalidated)
}

func TestMissingCommit(t *testing.T) {
	err := Execute(context.Background(), New(querycache.New()), Mutation[int]{
		Key: querycache.NewKey(constants.KindDailyTodos),
	})
	assert.Error(t, err)
}
