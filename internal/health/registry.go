package health

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/models"
	"github.com/julianstephens/steady/internal/querycache"
)

// Descriptor tells the history dispatcher how to read one metric.
type Descriptor struct {
	Key  models.MetricKey
	Unit string
	// Fetch reads the raw series for the last days days.
	Fetch func(ctx context.Context, days int) ([]models.MetricPoint, error)
	// Parse converts a raw value to the display unit. Nil keeps it as is.
	Parse func(raw float64) float64
}

// Registry maps metric keys to descriptors.
type Registry struct {
	descriptors map[models.MetricKey]Descriptor
	order       []models.MetricKey
}

func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[models.MetricKey]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Key == "" || d.Fetch == nil {
			return nil, fmt.Errorf("descriptor %q needs a key and a fetch function", d.Key)
		}
		if _, dup := r.descriptors[d.Key]; dup {
			return nil, fmt.Errorf("duplicate descriptor for %s", d.Key)
		}
		r.descriptors[d.Key] = d
		r.order = append(r.order, d.Key)
	}
	return r, nil
}

// EmptyRegistry has no metrics; every history lookup is ErrUnknownMetric.
func EmptyRegistry() *Registry {
	return &Registry{descriptors: map[models.MetricKey]Descriptor{}}
}

func (r *Registry) Lookup(key models.MetricKey) (Descriptor, bool) {
	d, ok := r.descriptors[key]
	return d, ok
}

// Keys returns the registered metrics in registration order.
func (r *Registry) Keys() []models.MetricKey {
	return append([]models.MetricKey(nil), r.order...)
}

// DefaultRegistry registers the history-capable metrics of source.
func DefaultRegistry(source Source) *Registry {
	fetch := func(key models.MetricKey) func(context.Context, int) ([]models.MetricPoint, error) {
		return func(ctx context.Context, days int) ([]models.MetricPoint, error) {
			return source.MetricHistory(ctx, key, days)
		}
	}
	r, err := NewRegistry(
		Descriptor{Key: models.MetricSteps, Unit: "steps", Fetch: fetch(models.MetricSteps), Parse: math.Round},
		Descriptor{Key: models.MetricWeight, Unit: "kg", Fetch: fetch(models.MetricWeight), Parse: roundTo(1)},
		Descriptor{Key: models.MetricRestingHeartRate, Unit: "bpm", Fetch: fetch(models.MetricRestingHeartRate), Parse: math.Round},
		Descriptor{Key: models.MetricBodyFatPercentage, Unit: "%", Fetch: fetch(models.MetricBodyFatPercentage), Parse: percent},
		Descriptor{Key: models.MetricHRV, Unit: "ms", Fetch: fetch(models.MetricHRV), Parse: math.Round},
	)
	if err != nil {
		panic(err)
	}
	return r
}

func roundTo(places int) func(float64) float64 {
	scale := math.Pow(10, float64(places))
	return func(v float64) float64 { return math.Round(v*scale) / scale }
}

// percent accepts either a 0..1 fraction or an already scaled percentage.
func percent(v float64) float64 {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return roundTo(1)(v)
}

// Gate reports whether metrics may be read.
type Gate interface {
	Status() Status
}

// Histories serves cached metric series through a Registry.
type Histories struct {
	registry   *Registry
	cache      *querycache.Cache
	gate       Gate
	staleAfter time.Duration
}

// NewHistories serves registry through cache. A zero staleAfter uses the
// default health threshold.
func NewHistories(registry *Registry, cache *querycache.Cache, gate Gate, staleAfter time.Duration) *Histories {
	if staleAfter == 0 {
		staleAfter = constants.HealthStaleAfter
	}
	return &Histories{
		registry:   registry,
		cache:      cache,
		gate:       gate,
		staleAfter: staleAfter,
	}
}

// HistoryKey is the cache key of key's series over days.
func HistoryKey(key models.MetricKey, days int) querycache.Key {
	return querycache.NewKey(constants.KindHealthHistory, string(key), strconv.Itoa(days))
}

// Get returns key's daily series for the last days days, oldest first.
func (h *Histories) Get(ctx context.Context, key models.MetricKey, days int) ([]models.MetricPoint, error) {
	if days < 1 || days > constants.MaxHistoryDays {
		return nil, fmt.Errorf("days must be between 1 and %d, got %d", constants.MaxHistoryDays, days)
	}
	switch h.gate.Status() {
	case Unavailable:
		return nil, ErrUnavailable
	case Unauthorized:
		return nil, ErrNotAuthorized
	}
	d, ok := h.registry.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, key)
	}

	points, err := querycache.Query(ctx, h.cache, HistoryKey(key, days), h.staleAfter,
		func(ctx context.Context) ([]models.MetricPoint, error) {
			raw, err := d.Fetch(ctx, days)
			if err != nil {
				return nil, err
			}
			return normalize(raw, d.Parse), nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s history: %w", key, err)
	}
	return append([]models.MetricPoint(nil), points...), nil
}

func normalize(raw []models.MetricPoint, parse func(float64) float64) []models.MetricPoint {
	out := make([]models.MetricPoint, 0, len(raw))
	for _, p := range raw {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		if parse != nil {
			p.Value = parse(p.Value)
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
