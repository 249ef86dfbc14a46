package models

import (
	"fmt"
	"sort"
)

// MetricKey names a health metric.
type MetricKey string

const (
	MetricSteps             MetricKey = "steps"
	MetricWeight            MetricKey = "weight"
	MetricRestingHeartRate  MetricKey = "restingHeartRate"
	MetricBodyFatPercentage MetricKey = "bodyFatPercentage"
	MetricLeanBodyMass      MetricKey = "leanBodyMass"
	MetricBodyMassIndex     MetricKey = "bodyMassIndex"
	MetricExerciseMinutes   MetricKey = "exerciseMinutes"
	MetricTimeInDaylight    MetricKey = "timeInDaylight"
	MetricHRV               MetricKey = "hrv"
	MetricWorkoutsThisWeek  MetricKey = "workoutsThisWeek"
)

// HealthMetrics is today's snapshot from the device health source. A nil
// field after a successful load means the metric is missing.
type HealthMetrics struct {
	Steps             *float64 `json:"steps"`
	Weight            *float64 `json:"weight"`
	RestingHeartRate  *float64 `json:"restingHeartRate"`
	BodyFatPercentage *float64 `json:"bodyFatPercentage"`
	LeanBodyMass      *float64 `json:"leanBodyMass"`
	BodyMassIndex     *float64 `json:"bodyMassIndex"`
	ExerciseMinutes   *float64 `json:"exerciseMinutes"`
	TimeInDaylight    *float64 `json:"timeInDaylight"`
	HRV               *float64 `json:"hrv"`
	WorkoutsThisWeek  *float64 `json:"workoutsThisWeek"`
}

// Values maps every metric key to its (possibly nil) value.
func (m HealthMetrics) Values() map[MetricKey]*float64 {
	return map[MetricKey]*float64{
		MetricSteps:             m.Steps,
		MetricWeight:            m.Weight,
		MetricRestingHeartRate:  m.RestingHeartRate,
		MetricBodyFatPercentage: m.BodyFatPercentage,
		MetricLeanBodyMass:      m.LeanBodyMass,
		MetricBodyMassIndex:     m.BodyMassIndex,
		MetricExerciseMinutes:   m.ExerciseMinutes,
		MetricTimeInDaylight:    m.TimeInDaylight,
		MetricHRV:               m.HRV,
		MetricWorkoutsThisWeek:  m.WorkoutsThisWeek,
	}
}

// Missing returns the sorted keys of metrics that resolved to nil.
func (m HealthMetrics) Missing() []MetricKey {
	var missing []MetricKey
	for k, v := range m.Values() {
		if v == nil {
			missing = append(missing, k)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// MetricPoint is one day's value in a metric history series.
type MetricPoint struct {
	Date  Day     `json:"date"`
	Value float64 `json:"value"`
}

// Float returns a pointer to v, for building snapshots.
func Float(v float64) *float64 { return &v }

// FormatMetric renders an optional value for display.
func FormatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
