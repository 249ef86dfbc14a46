package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSettings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Settings
	}{
		{
			name: "empty payload",
			raw:  "",
			want: DefaultSettings(),
		},
		{
			name: "not json",
			raw:  "{top3:",
			want: DefaultSettings(),
		},
		{
			name: "json array",
			raw:  `[true, false]`,
			want: DefaultSettings(),
		},
		{
			name: "json null",
			raw:  `null`,
			want: DefaultSettings(),
		},
		{
			name: "complete payload",
			raw:  `{"top3_todos_enabled":false,"journal_enabled":false,"theme_preference":"dark"}`,
			want: Settings{Top3TodosEnabled: false, JournalEnabled: false, ThemePreference: ThemeDark},
		},
		{
			name: "partial payload keeps defaults",
			raw:  `{"journal_enabled":false}`,
			want: Settings{Top3TodosEnabled: true, JournalEnabled: false, ThemePreference: ThemeSystem},
		},
		{
			name: "unknown theme coerced",
			raw:  `{"theme_preference":"solarized"}`,
			want: DefaultSettings(),
		},
		{
			name: "mistyped fields ignored",
			raw:  `{"top3_todos_enabled":42,"journal_enabled":{},"theme_preference":7}`,
			want: DefaultSettings(),
		},
		{
			name: "boolean strings accepted",
			raw:  `{"top3_todos_enabled":"false","theme_preference":"LIGHT"}`,
			want: Settings{Top3TodosEnabled: false, JournalEnabled: true, ThemePreference: ThemeLight},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSettings([]byte(tt.raw))
			assert.Equal(t, tt.want, got)
			assert.True(t, got.ThemePreference.Valid())
		})
	}
}

func TestLegacyToSettings(t *testing.T) {
	got := LegacyToSettings(map[string]string{
		"top3_todos_enabled": "true",
		"journal_enabled":    "false",
		"theme_preference":   "dark",
	})
	assert.Equal(t, Settings{Top3TodosEnabled: true, JournalEnabled: false, ThemePreference: ThemeDark}, got)

	got = LegacyToSettings(map[string]string{"journal_enabled": "maybe"})
	assert.Equal(t, DefaultSettings(), got)
}

func TestSettingsApply(t *testing.T) {
	off := false
	bogus := Theme("neon")
	s := DefaultSettings().Apply(SettingsPatch{JournalEnabled: &off, ThemePreference: &bogus})

	assert.True(t, s.Top3TodosEnabled)
	assert.False(t, s.JournalEnabled)
	assert.Equal(t, ThemeSystem, s.ThemePreference)
	assert.True(t, SettingsPatch{}.Empty())
}

func TestHealthMetricsMissing(t *testing.T) {
	m := HealthMetrics{Steps: Float(8000)}
	missing := m.Missing()

	assert.Contains(t, missing, MetricWeight)
	assert.NotContains(t, missing, MetricSteps)
	assert.Len(t, missing, 9)
}

func TestDay(t *testing.T) {
	d, err := ParseDay("2024-02-28")
	assert.NoError(t, err)
	assert.Equal(t, Day("2024-02-29"), d.AddDays(1))
	assert.Equal(t, Day("2024-02-22"), d.AddDays(-6))

	_, err = ParseDay("02/28/2024")
	assert.Error(t, err)
}

func TestTodoPosition(t *testing.T) {
	for _, n := range []int{1, 2, 3} {
		_, err := ParsePosition(n)
		assert.NoError(t, err)
	}
	for _, n := range []int{0, 4, -1} {
		_, err := ParsePosition(n)
		assert.Error(t, err)
	}
}
