package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/steady/internal/models"
)

const journalSelect = "id::text, user_id, journal_date::text, win, tension, gratitude, created_at, updated_at"

func scanJournal(row rowScanner) (models.DailyJournalEntry, error) {
	var e models.DailyJournalEntry
	var day string
	if err := row.Scan(&e.ID, &e.UserID, &day, &e.Win, &e.Tension, &e.Gratitude, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.DailyJournalEntry{}, err
	}
	e.JournalDate = models.Day(day)
	return e, nil
}

func (s *Store) GetJournalEntry(ctx context.Context, userID string, day models.Day) (*models.DailyJournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+journalSelect+`
		FROM daily_journal_entries WHERE user_id = $1 AND journal_date = $2::date`, userID, string(day))
	e, err := scanJournal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal entry: %w", err)
	}
	return &e, nil
}

func (s *Store) ListJournalEntries(ctx context.Context, userID string, from, to models.Day) ([]models.DailyJournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+journalSelect+`
		FROM daily_journal_entries
		WHERE user_id = $1 AND journal_date BETWEEN $2::date AND $3::date
		ORDER BY journal_date DESC`, userID, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []models.DailyJournalEntry{}
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) UpsertJournalEntry(ctx context.Context, entry models.DailyJournalEntry) (models.DailyJournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_journal_entries (id, user_id, journal_date, win, tension, gratitude, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, journal_date) DO UPDATE SET
			win = EXCLUDED.win,
			tension = EXCLUDED.tension,
			gratitude = EXCLUDED.gratitude,
			updated_at = EXCLUDED.updated_at
		RETURNING `+journalSelect,
		entry.ID, entry.UserID, string(entry.JournalDate), entry.Win, entry.Tension, entry.Gratitude,
		entry.CreatedAt, entry.UpdatedAt)
	saved, err := scanJournal(row)
	if err != nil {
		return models.DailyJournalEntry{}, fmt.Errorf("failed to upsert journal entry: %w", err)
	}
	return saved, nil
}

func (s *Store) DeleteJournalEntry(ctx context.Context, userID string, day models.Day) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM daily_journal_entries WHERE user_id = $1 AND journal_date = $2::date", userID, string(day))
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return expectAffected(res, "journal entry", string(day))
}
