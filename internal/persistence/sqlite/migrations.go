package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrationStep is a single versioned schema change. Steps are applied in
// order inside one transaction each and tracked in schema_migrations.
type migrationStep struct {
	version    int
	name       string
	statements []string
}

var migrations = []migrationStep{
	{
		version: 1,
		name:    "initial schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				track TEXT NOT NULL,
				date TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT NOT NULL,
				time_slot TEXT NOT NULL DEFAULT '',
				description TEXT,
				speakers TEXT NOT NULL DEFAULT '[]',
				imported_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_track ON sessions(track)`,
			`CREATE TABLE IF NOT EXISTS bookings (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				session_id TEXT NOT NULL,
				booked_at TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled', 'conflict'))
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_bookings_user_session ON bookings(user_id, session_id)`,
			`CREATE TABLE IF NOT EXISTS reminders (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				session_id TEXT NOT NULL,
				minutes_before INTEGER NOT NULL,
				enabled INTEGER NOT NULL DEFAULT 1,
				channel TEXT NOT NULL DEFAULT 'browser'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_reminders_user_session ON reminders(user_id, session_id)`,
			`CREATE TABLE IF NOT EXISTS preferences (
				user_id TEXT PRIMARY KEY,
				interests TEXT NOT NULL DEFAULT '[]',
				default_reminder_minutes INTEGER NOT NULL,
				notifications_enabled INTEGER NOT NULL,
				sound_enabled INTEGER NOT NULL,
				vibration_enabled INTEGER NOT NULL,
				theme TEXT NOT NULL,
				language TEXT NOT NULL,
				page_size INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
}

// Migrate applies all pending schema migrations. It is safe to call on every
// startup; applied versions are skipped.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", s.mapper.MapError(err))
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, step := range migrations {
		if applied[step.version] {
			continue
		}
		err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range step.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", step.version, step.name, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				step.version, step.name, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return s.mapper.MapError(err)
		}
	}

	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", s.mapper.MapError(err))
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
