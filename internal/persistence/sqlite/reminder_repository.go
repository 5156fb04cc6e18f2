package sqlite

import (
	"context"
	"fmt"

	"github.com/example/conference-assistant/internal/persistence"
)

// CreateReminder stores a new reminder setting.
func (s *Store) CreateReminder(ctx context.Context, reminder persistence.Reminder) error {
	if reminder.ID == "" || reminder.UserID == "" || reminder.SessionID == "" {
		return fmt.Errorf("%w: reminder requires id, user_id and session_id", persistence.ErrInvalidState)
	}

	query := `INSERT INTO reminders (id, user_id, session_id, minutes_before, enabled, channel) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.pool.DB().ExecContext(ctx, query,
		reminder.ID,
		reminder.UserID,
		reminder.SessionID,
		reminder.MinutesBefore,
		boolToInt(reminder.Enabled),
		string(reminder.Channel),
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

// UpdateReminder rewrites an existing reminder setting.
func (s *Store) UpdateReminder(ctx context.Context, reminder persistence.Reminder) error {
	query := `UPDATE reminders SET minutes_before = ?, enabled = ?, channel = ? WHERE id = ?`
	result, err := s.pool.DB().ExecContext(ctx, query,
		reminder.MinutesBefore,
		boolToInt(reminder.Enabled),
		string(reminder.Channel),
		reminder.ID,
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteReminder removes a reminder by ID.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteRemindersForSession removes every reminder the user holds for a
// session. Deleting zero rows is not an error; cancellation must be
// idempotent.
func (s *Store) DeleteRemindersForSession(ctx context.Context, userID, sessionID string) error {
	_, err := s.pool.DB().ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ? AND session_id = ?`, userID, sessionID)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

// ListReminders returns all reminder settings for a user.
func (s *Store) ListReminders(ctx context.Context, userID string) ([]persistence.Reminder, error) {
	query := `SELECT id, user_id, session_id, minutes_before, enabled, channel FROM reminders WHERE user_id = ? ORDER BY session_id, minutes_before, id`
	rows, err := s.pool.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	reminders := make([]persistence.Reminder, 0)
	for rows.Next() {
		var reminder persistence.Reminder
		var enabled int
		var channel string
		if err := rows.Scan(&reminder.ID, &reminder.UserID, &reminder.SessionID, &reminder.MinutesBefore, &enabled, &channel); err != nil {
			return nil, err
		}
		reminder.Enabled = enabled != 0
		reminder.Channel = persistence.ReminderChannel(channel)
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return reminders, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
