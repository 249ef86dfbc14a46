package constants

import "time"

// RecordKind names a cached record category. Query cache keys are prefixed with
// the kind so a whole category can be invalidated at once.
type RecordKind string

const (
	AppName            = "steady"
	DefaultKeyringUser = "remote-connection"
	DefaultDataDir     = "~/.config/steady"
	Version            = "v0.1.0"

	// DateFormat is the calendar date format used for todo and journal days (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Record kinds
	KindDailyTodos    RecordKind = "dailyTodos"
	KindJournalEntry  RecordKind = "dailyJournal"
	KindJournalRecent RecordKind = "dailyJournalRecent"
	KindHealthToday   RecordKind = "healthToday"
	KindHealthHistory RecordKind = "healthHistory"

	// Staleness thresholds
	TodoStaleAfter    = 30 * time.Second
	JournalStaleAfter = 30 * time.Second
	HealthStaleAfter  = 10 * time.Minute

	// Todo positions
	MinTodoPosition = 1
	MaxTodoPosition = 3

	// Health
	DefaultHistoryDays  = 7
	MaxHistoryDays      = 365
	HealthBridgeTimeout = 12 * time.Second

	// Day rollover
	DefaultRolloverSpec = "@midnight"
)
