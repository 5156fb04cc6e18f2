package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/conference-assistant/internal/persistence"
)

// GetPreferences retrieves the stored preferences for a user. Returns
// persistence.ErrNotFound when the user has never stored any; callers merge
// stored values over defaults.
func (s *Store) GetPreferences(ctx context.Context, userID string) (persistence.UserPreferences, error) {
	query := `SELECT user_id, interests, default_reminder_minutes, notifications_enabled, sound_enabled, vibration_enabled, theme, language, page_size
		FROM preferences WHERE user_id = ?`

	var prefs persistence.UserPreferences
	var interests string
	var notifications, sound, vibration int

	err := s.pool.DB().QueryRowContext(ctx, query, userID).Scan(
		&prefs.UserID,
		&interests,
		&prefs.DefaultReminderMinutes,
		&notifications,
		&sound,
		&vibration,
		&prefs.Theme,
		&prefs.Language,
		&prefs.PageSize,
	)
	if err != nil {
		return persistence.UserPreferences{}, s.mapper.MapError(err)
	}

	if err := json.Unmarshal([]byte(interests), &prefs.Interests); err != nil {
		return persistence.UserPreferences{}, fmt.Errorf("failed to decode interests: %w", err)
	}
	prefs.NotificationsEnabled = notifications != 0
	prefs.SoundEnabled = sound != 0
	prefs.VibrationEnabled = vibration != 0
	return prefs, nil
}

// SavePreferences upserts the full preference record for a user.
func (s *Store) SavePreferences(ctx context.Context, prefs persistence.UserPreferences) error {
	if prefs.UserID == "" {
		return fmt.Errorf("%w: preferences require user_id", persistence.ErrInvalidState)
	}

	interests, err := json.Marshal(prefs.Interests)
	if err != nil {
		return fmt.Errorf("failed to encode interests: %w", err)
	}

	query := `INSERT INTO preferences (user_id, interests, default_reminder_minutes, notifications_enabled, sound_enabled, vibration_enabled, theme, language, page_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			interests = excluded.interests,
			default_reminder_minutes = excluded.default_reminder_minutes,
			notifications_enabled = excluded.notifications_enabled,
			sound_enabled = excluded.sound_enabled,
			vibration_enabled = excluded.vibration_enabled,
			theme = excluded.theme,
			language = excluded.language,
			page_size = excluded.page_size`

	_, err = s.pool.DB().ExecContext(ctx, query,
		prefs.UserID,
		string(interests),
		prefs.DefaultReminderMinutes,
		boolToInt(prefs.NotificationsEnabled),
		boolToInt(prefs.SoundEnabled),
		boolToInt(prefs.VibrationEnabled),
		prefs.Theme,
		prefs.Language,
		prefs.PageSize,
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}
