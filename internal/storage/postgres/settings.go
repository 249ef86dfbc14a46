package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/steady/internal/models"
)

func (s *Store) GetUserSettings(ctx context.Context, userID string) (*models.Settings, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT settings FROM user_settings WHERE user_id = $1", userID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user settings: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil
	}

	settings := models.NormalizeSettings(payload)
	return &settings, nil
}

func (s *Store) SaveUserSettings(ctx context.Context, userID string, settings models.Settings) error {
	payload, err := settings.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	// PostgreSQL uses INSERT ... ON CONFLICT for upsert
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, settings, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (user_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at`,
		userID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}
