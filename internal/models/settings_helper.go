package models

import "github.com/julianstephens/steady/internal/constants"

// LegacyToSettings converts the pre-unification scattered keys to a Settings
// value. Missing or unparseable values keep their defaults.
func LegacyToSettings(data map[string]string) Settings {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.LegacyTop3TodosKey:
			if b, ok := parseFlag(value); ok {
				settings.Top3TodosEnabled = b
			}
		case constants.LegacyJournalKey:
			if b, ok := parseFlag(value); ok {
				settings.JournalEnabled = b
			}
		case constants.LegacyThemeKey:
			settings.ThemePreference = ParseTheme(value)
		}
	}
	return settings
}

// PatchFromFlags builds a patch from optional CLI/form values.
func PatchFromFlags(top3, journal *bool, theme *string) SettingsPatch {
	p := SettingsPatch{Top3TodosEnabled: top3, JournalEnabled: journal}
	if theme != nil {
		t := ParseTheme(*theme)
		p.ThemePreference = &t
	}
	return p
}
