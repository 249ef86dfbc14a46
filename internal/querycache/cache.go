// Package querycache is the shared in-memory store of fetched records. Every
// component reads and writes record state through one Cache so no private
// copy can drift from it.
package querycache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/steady/internal/constants"
)

// Key identifies one cached query: a record kind plus its discriminating
// parameters, e.g. (dailyTodos, "2024-03-01").
type Key struct {
	Kind   constants.RecordKind
	Params string
}

// NewKey joins params with "|" into a comparable key.
func NewKey(kind constants.RecordKind, params ...string) Key {
	return Key{Kind: kind, Params: strings.Join(params, "|")}
}

func (k Key) String() string {
	if k.Params == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.Params
}

// Entry is a cached value with its fetch time. Invalidated entries keep their
// value but force the next Query to refetch.
type Entry struct {
	Value       any
	FetchedAt   time.Time
	Invalidated bool
}

// call is one in-flight fetch shared by every Query waiting on the same key.
type call struct {
	gen    uint64
	done   chan struct{}
	value  any
	err    error
	cancel context.CancelFunc
}

// Cache is safe for concurrent use. Values are shared, not copied, so callers
// must treat what they read as immutable and write replacements with Set.
type Cache struct {
	mu       sync.RWMutex
	entries  map[Key]Entry
	gens     map[Key]uint64
	inflight map[Key]*call
	now      func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for FetchedAt and staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:  make(map[Key]Entry),
		gens:     make(map[Key]uint64),
		inflight: make(map[Key]*call),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(key Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Set writes value directly, bypassing any fetch. Fetches already in flight
// for key will not overwrite it.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *Cache) setLocked(key Key, value any) {
	c.gens[key]++
	c.entries[key] = Entry{Value: value, FetchedAt: c.now()}
}

// Update replaces the value at key with fn(current). ok reports whether a
// value was cached. The read and write happen under one lock.
func (c *Cache) Update(key Key, fn func(current any, ok bool) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.entries[key]
	c.setLocked(key, fn(cur.Value, ok))
}

// Speculate cancels any fetch in flight for key and, when fn is non-nil,
// replaces the value with fn(current), all under one lock. It returns the
// entry that was replaced and a generation for Rollback.
func (c *Cache) Speculate(key Key, fn func(current any, ok bool) any) (prev Entry, hadPrev bool, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(key)
	prev, hadPrev = c.entries[key]
	if fn != nil {
		c.setLocked(key, fn(prev.Value, hadPrev))
	}
	return prev, hadPrev, c.gens[key]
}

// Rollback puts prev back at key, or removes key when hadPrev is false. It
// does nothing and returns false if key was written after gen.
func (c *Cache) Rollback(key Key, gen uint64, prev Entry, hadPrev bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return false
	}
	c.gens[key]++
	if hadPrev {
		c.entries[key] = prev
	} else {
		delete(c.entries, key)
	}
	return true
}

// Invalidate marks key for refetch without discarding its value.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.Invalidated = true
		c.entries[key] = e
	}
}

// InvalidateKind marks every key of kind for refetch.
func (c *Cache) InvalidateKind(kind constants.RecordKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if k.Kind != kind {
			continue
		}
		e.Invalidated = true
		c.entries[k] = e
		n++
	}
	return n
}

// Remove drops key entirely.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.entries, key)
}

// Cancel aborts the fetch in flight for key, if any. Its result is discarded.
func (c *Cache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked(key)
}

func (c *Cache) cancelLocked(key Key) {
	c.gens[key]++
	if cl, ok := c.inflight[key]; ok {
		cl.cancel()
		delete(c.inflight, key)
	}
}

// Clear drops every entry and cancels every in-flight fetch.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, cl := range c.inflight {
		cl.cancel()
		c.gens[k]++
	}
	for k := range c.entries {
		c.gens[k]++
	}
	c.entries = make(map[Key]Entry)
	c.inflight = make(map[Key]*call)
}

// Keys returns every cached key ordered by kind then params.
func (c *Cache) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Params < keys[j].Params
	})
	return keys
}

// InFlight reports whether a fetch for key is running.
func (c *Cache) InFlight(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.inflight[key]
	return ok
}
