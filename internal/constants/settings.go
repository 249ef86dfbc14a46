package constants

const (
	// Unified settings snapshot key in the durable local store
	SettingsStorageKey = "app_settings"

	// Session keys
	SessionUserKey    = "session_user"
	LastSyncedUserKey = "settings_last_synced_user"

	// Legacy scattered keys written by earlier releases
	LegacyTop3TodosKey = "top3_todos_enabled"
	LegacyJournalKey   = "journal_enabled"
	LegacyThemeKey     = "theme_preference"

	// Default Settings Values
	DefaultTop3TodosEnabled = true
	DefaultJournalEnabled   = true
	DefaultThemePreference  = "system"
)

// LegacySettingsKeys lists every pre-unification key removed by the one-time migration.
var LegacySettingsKeys = []string{LegacyTop3TodosKey, LegacyJournalKey, LegacyThemeKey}
