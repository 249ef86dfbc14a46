// Package instrument holds the process-wide prometheus collectors for the
// sync layer and a text dump of them for the CLI.
package instrument

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "steady"

// Cache lookup results.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupJoined = "joined"
)

// Mutation outcomes.
const (
	MutationCommitted  = "committed"
	MutationRolledBack = "rolled_back"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Query cache reads by record kind and result",
	}, []string{"kind", "result"})

	cacheFetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_fetch_errors_total",
		Help:      "Failed query cache fetches by record kind",
	}, []string{"kind"})

	cacheDiscardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_discarded_fetches_total",
		Help:      "Fetch results dropped because a newer write superseded them",
	}, []string{"kind"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Optimistic mutations by record kind and outcome",
	}, []string{"kind", "outcome"})

	healthLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "health_loads_total",
		Help:      "Health metric loads by result",
	}, []string{"result"})

	settingsSyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settings_syncs_total",
		Help:      "Per-login settings merges by action",
	}, []string{"action"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Analytics events by delivery result",
	}, []string{"result"})

	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "mutation_commit_seconds",
		Help:      "Remote write latency of optimistic mutations",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"kind"})
)

func CacheLookup(kind, result string) {
	cacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

func CacheFetchError(kind string) {
	cacheFetchErrorsTotal.WithLabelValues(kind).Inc()
}

func CacheDiscard(kind string) {
	cacheDiscardsTotal.WithLabelValues(kind).Inc()
}

// Mutation records the outcome and commit latency of one optimistic write.
func Mutation(kind, outcome string, seconds float64) {
	mutationsTotal.WithLabelValues(kind, outcome).Inc()
	mutationDuration.WithLabelValues(kind).Observe(seconds)
}

func HealthLoad(result string) {
	healthLoadsTotal.WithLabelValues(result).Inc()
}

func SettingsSync(action string) {
	settingsSyncsTotal.WithLabelValues(action).Inc()
}

func Event(result string) {
	eventsTotal.WithLabelValues(result).Inc()
}

// WriteText writes every steady_* family from the default gatherer in the
// prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := ownFamilies()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Value returns the current value of the counter named name whose labels
// match labels exactly. Unknown series read as zero.
func Value(name string, labels map[string]string) float64 {
	families, err := ownFamilies()
	if err != nil {
		return 0
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) && m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func ownFamilies() ([]*dto.MetricFamily, error) {
	all, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	var out []*dto.MetricFamily
	for _, mf := range all {
		if strings.HasPrefix(mf.GetName(), namespace+"_") {
			out = append(out, mf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out, nil
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; !ok || v != p.GetValue() {
			return false
		}
	}
	return true
}
