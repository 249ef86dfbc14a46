package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/events"
	"github.com/julianstephens/steady/internal/instrument"
	"github.com/julianstephens/steady/internal/logger"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/querycache"
)

// TodayKey is the cache key of the current metrics snapshot.
var TodayKey = querycache.NewKey(constants.KindHealthToday)

// State is a point-in-time view of the connector for rendering.
type State struct {
	Status Status
	// AuthFailed is set when the last Connect was denied and cleared by the next Connect.
	AuthFailed bool
	Loading    bool
	// Missing lists metrics that came back empty from the last successful load.
	Missing  []models.MetricKey
	Metrics  *models.HealthMetrics
	LoadedAt time.Time
}

// Connector is the authorization state machine for a Source.
type Connector struct {
	source     Source
	cache      *querycache.Cache
	events     *events.Emitter
	staleAfter time.Duration

	mu         sync.Mutex
	status     Status
	authFailed bool
	missing    []models.MetricKey
	loading    atomic.Bool
}

func NewConnector(source Source, cache *querycache.Cache, emitter *events.Emitter) *Connector {
	return &Connector{
		source:     source,
		cache:      cache,
		events:     emitter,
		staleAfter: constants.HealthStaleAfter,
		status:     Unavailable,
	}
}

// Start resolves the initial state: Unavailable when the device lacks the
// capability, otherwise Unauthorized until the authorization check says
// access was granted, in which case metrics are loaded.
func (c *Connector) Start(ctx context.Context) Status {
	if c.source == nil || !c.source.IsAvailable() {
		c.setStatus(Unavailable)
		return Unavailable
	}
	c.setStatus(Unauthorized)

	granted, err := c.source.CheckAuthorization(ctx)
	if err != nil {
		logger.Warn("Health authorization check failed", "error", err)
		return Unauthorized
	}
	if !granted {
		return Unauthorized
	}
	c.setStatus(Authorized)
	c.load(ctx)
	return Authorized
}

// Connect requests access. It returns false without doing anything when the
// source is unavailable.
func (c *Connector) Connect(ctx context.Context) bool {
	c.mu.Lock()
	if c.status == Unavailable {
		c.mu.Unlock()
		return false
	}
	c.authFailed = false
	c.mu.Unlock()

	granted, err := c.source.RequestPermissions(ctx)
	if err != nil || !granted {
		if err != nil {
			logger.Warn("Health permission request failed", "error", err)
		}
		c.mu.Lock()
		c.status = Unauthorized
		c.authFailed = true
		c.mu.Unlock()
		return false
	}

	c.setStatus(Authorized)
	c.events.Track(constants.EventHealthConnected, nil)
	c.load(ctx)
	return true
}

// RequestMorePermissions re-prompts for metric types added since the first
// grant, then reloads.
func (c *Connector) RequestMorePermissions(ctx context.Context) error {
	if c.Status() == Unavailable {
		return ErrUnavailable
	}
	granted, err := c.source.RequestPermissions(ctx)
	if err != nil {
		logger.Warn("Health permission request failed", "error", err)
		return err
	}
	if granted {
		c.setStatus(Authorized)
	}
	c.Refresh(ctx)
	return nil
}

// Refresh reloads today's metrics when authorized and does nothing otherwise.
func (c *Connector) Refresh(ctx context.Context) {
	if c.Status() != Authorized {
		return
	}
	c.load(ctx)
}

// load fetches today's snapshot unless another load is running.
func (c *Connector) load(ctx context.Context) {
	if !c.loading.CompareAndSwap(false, true) {
		instrument.HealthLoad("skipped")
		return
	}
	defer c.loading.Store(false)

	c.cache.Invalidate(TodayKey)
	metrics, err := querycache.Query(ctx, c.cache, TodayKey, c.staleAfter, c.source.TodayMetrics)
	if err != nil {
		instrument.HealthLoad("failed")
		logger.Warn("Failed to load health metrics", "error", err)
		return
	}

	missing := metrics.Missing()
	c.mu.Lock()
	c.missing = missing
	c.mu.Unlock()
	instrument.HealthLoad("loaded")
	logger.Debug("Health metrics loaded", "missing", len(missing))
}

func (c *Connector) setStatus(s Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}

func (c *Connector) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// State returns the connector's current view.
func (c *Connector) State() State {
	c.mu.Lock()
	st := State{
		Status:     c.status,
		AuthFailed: c.authFailed,
		Loading:    c.loading.Load(),
		Missing:    append([]models.MetricKey(nil), c.missing...),
	}
	c.mu.Unlock()

	if e, ok := c.cache.Get(TodayKey); ok {
		if m, ok := e.Value.(models.HealthMetrics); ok {
			st.Metrics = &m
			st.LoadedAt = e.FetchedAt
		}
	}
	return st
}
