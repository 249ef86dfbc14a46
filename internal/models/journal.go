package models

import "time"

// JournalFields are the user-editable parts of a journal entry.
type JournalFields struct {
	Win       string `json:"win"`
	Tension   string `json:"tension"`
	Gratitude string `json:"gratitude"`
}

// DailyJournalEntry is a user's reflection for one day. At most one entry
// exists per (UserID, JournalDate).
type DailyJournalEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	JournalDate Day       `json:"journal_date"`
	Win         string    `json:"win"`
	Tension     string    `json:"tension"`
	Gratitude   string    `json:"gratitude"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fields returns the editable portion of the entry.
func (e DailyJournalEntry) Fields() JournalFields {
	return JournalFields{Win: e.Win, Tension: e.Tension, Gratitude: e.Gratitude}
}

// WithFields returns a copy of e carrying f.
func (e DailyJournalEntry) WithFields(f JournalFields) DailyJournalEntry {
	e.Win = f.Win
	e.Tension = f.Tension
	e.Gratitude = f.Gratitude
	return e
}
