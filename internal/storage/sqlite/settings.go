package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/models"
)

func (s *Store) GetUserSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var payload sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT settings FROM user_settings WHERE user_id = ?", userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user settings: %w", err)
	}
	if !payload.Valid || payload.String == "" {
		return nil, nil
	}

	settings := models.NormalizeSettings([]byte(payload.String))
	return &settings, nil
}

func (s *Store) SaveUserSettings(ctx context.Context, userID string, settings models.Settings) error {
	payload, err := settings.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, settings, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at`,
		userID, string(payload), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}
