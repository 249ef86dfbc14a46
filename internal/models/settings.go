package models

import (
	"encoding/json"
	"strings"

	"github.com/julianstephens/steady/internal/constants"
)

// Theme is the user's colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is one of the known theme values.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ParseTheme coerces a raw string to a Theme, falling back to the default.
func ParseTheme(s string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return Theme(constants.DefaultThemePreference)
}

// Settings represents application-wide user preferences
type Settings struct {
	Top3TodosEnabled bool  `json:"top3_todos_enabled"` // whether the top-3 daily todo card is shown
	JournalEnabled   bool  `json:"journal_enabled"`    // whether the daily journal card is shown
	ThemePreference  Theme `json:"theme_preference"`   // light, dark or system
}

// SettingsPatch is a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Top3TodosEnabled *bool  `json:"top3_todos_enabled,omitempty"`
	JournalEnabled   *bool  `json:"journal_enabled,omitempty"`
	ThemePreference  *Theme `json:"theme_preference,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.Top3TodosEnabled == nil && p.JournalEnabled == nil && p.ThemePreference == nil
}

// DefaultSettings returns the hard-coded fallback settings.
func DefaultSettings() Settings {
	return Settings{
		Top3TodosEnabled: constants.DefaultTop3TodosEnabled,
		JournalEnabled:   constants.DefaultJournalEnabled,
		ThemePreference:  Theme(constants.DefaultThemePreference),
	}
}

// Apply returns a copy of s with the patch merged in and normalized.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Top3TodosEnabled != nil {
		s.Top3TodosEnabled = *p.Top3TodosEnabled
	}
	if p.JournalEnabled != nil {
		s.JournalEnabled = *p.JournalEnabled
	}
	if p.ThemePreference != nil {
		s.ThemePreference = *p.ThemePreference
	}
	return s.Normalize()
}

// Normalize coerces an invalid theme to the default.
func (s Settings) Normalize() Settings {
	if !s.ThemePreference.Valid() {
		s.ThemePreference = ParseTheme(string(s.ThemePreference))
	}
	return s
}

// Equal compares two settings field by field.
func (s Settings) Equal(o Settings) bool {
	return s.Top3TodosEnabled == o.Top3TodosEnabled &&
		s.JournalEnabled == o.JournalEnabled &&
		s.ThemePreference == o.ThemePreference
}

// Marshal encodes the normalized settings as JSON.
func (s Settings) Marshal() ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// NormalizeSettings decodes a stored settings payload. It never fails: a payload
// that is not a JSON object yields the defaults, and each missing or mistyped
// field falls back to its own default.
func NormalizeSettings(raw []byte) Settings {
	out := DefaultSettings()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return out
	}

	if v, ok := fields[constants.LegacyTop3TodosKey]; ok {
		if b, ok := decodeBool(v); ok {
			out.Top3TodosEnabled = b
		}
	}
	if v, ok := fields[constants.LegacyJournalKey]; ok {
		if b, ok := decodeBool(v); ok {
			out.JournalEnabled = b
		}
	}
	if v, ok := fields[constants.LegacyThemeKey]; ok {
		var theme string
		if err := json.Unmarshal(v, &theme); err == nil {
			out.ThemePreference = ParseTheme(theme)
		}
	}
	return out
}

// decodeBool accepts a JSON boolean or a "true"/"false" string.
func decodeBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseFlag(s)
	}
	return false, false
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}
