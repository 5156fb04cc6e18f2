package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// replaceBatchSize bounds the number of rows inserted per statement during a
// bulk replace so a large catalog never produces an oversized statement.
const replaceBatchSize = 100

const sessionColumns = "id, title, track, date, start_time, end_time, time_slot, description, speakers, imported_at"

// ListSessions returns the full catalog ordered by date and start time.
func (s *Store) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY date, start_time, id`
	return s.querySessions(ctx, query)
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	row := s.pool.DB().QueryRowContext(ctx, query, id)
	session, err := scanSession(row.Scan)
	if err != nil {
		return persistence.Session{}, s.mapper.MapError(err)
	}
	return session, nil
}

// ListSessionsByDate returns sessions on the given calendar date.
func (s *Store) ListSessionsByDate(ctx context.Context, date string) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE date = ? ORDER BY start_time, id`
	return s.querySessions(ctx, query, date)
}

// ListSessionsByTrackPrefix returns sessions whose track label starts with the
// given prefix, compared case-insensitively.
func (s *Store) ListSessionsByTrackPrefix(ctx context.Context, prefix string) ([]persistence.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE LOWER(track) LIKE ? ESCAPE '\' ORDER BY date, start_time, id`
	return s.querySessions(ctx, query, escapeLike(strings.ToLower(prefix))+"%")
}

// SearchSessions matches the term case-insensitively against titles,
// descriptions and speaker names. Speaker matching happens in Go because
// speakers are stored as a JSON column.
func (s *Store) SearchSessions(ctx context.Context, term string) ([]persistence.Session, error) {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(term)
	matched := make([]persistence.Session, 0)
	for _, session := range sessions {
		if sessionMatchesTerm(session, lower) {
			matched = append(matched, session)
		}
	}
	return matched, nil
}

// CountSessions returns the number of sessions in the catalog.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := s.pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	if err != nil {
		return 0, s.mapper.MapError(err)
	}
	return count, nil
}

// ReplaceSessions clears the session table and inserts the given set in
// bounded batches. The whole replacement runs in one transaction so a failure
// leaves the previous catalog intact.
func (s *Store) ReplaceSessions(ctx context.Context, sessions []persistence.Session) error {
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}

		for start := 0; start < len(sessions); start += replaceBatchSize {
			end := start + replaceBatchSize
			if end > len(sessions) {
				end = len(sessions)
			}
			if err := insertSessionBatch(ctx, tx, sessions[start:end]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

func insertSessionBatch(ctx context.Context, tx *sql.Tx, batch []persistence.Session) error {
	if len(batch) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*10)
	for _, session := range batch {
		speakers, err := json.Marshal(session.Speakers)
		if err != nil {
			return fmt.Errorf("failed to encode speakers for %s: %w", session.ID, err)
		}

		var description sql.NullString
		if session.Description != nil {
			description = sql.NullString{String: *session.Description, Valid: true}
		}

		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			session.ID,
			session.Title,
			session.Track,
			session.Date,
			session.StartTime,
			session.EndTime,
			session.TimeSlot,
			description,
			string(speakers),
			session.ImportedAt.UTC().Format(time.RFC3339),
		)
	}

	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert session batch: %w", err)
	}
	return nil
}

func (s *Store) querySessions(ctx context.Context, query string, args ...interface{}) ([]persistence.Session, error) {
	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return sessions, nil
}

func scanSession(scan func(dest ...interface{}) error) (persistence.Session, error) {
	var session persistence.Session
	var description sql.NullString
	var speakers string
	var importedAt string

	err := scan(
		&session.ID,
		&session.Title,
		&session.Track,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.TimeSlot,
		&description,
		&speakers,
		&importedAt,
	)
	if err != nil {
		return persistence.Session{}, err
	}

	if description.Valid {
		session.Description = &description.String
	}
	if err := json.Unmarshal([]byte(speakers), &session.Speakers); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to decode speakers for %s: %w", session.ID, err)
	}
	if parsed, err := time.Parse(time.RFC3339, importedAt); err == nil {
		session.ImportedAt = parsed
	}

	return session, nil
}

func sessionMatchesTerm(session persistence.Session, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(session.Title), lowerTerm) {
		return true
	}
	if session.Description != nil && strings.Contains(strings.ToLower(*session.Description), lowerTerm) {
		return true
	}
	for _, speaker := range session.Speakers {
		if strings.Contains(strings.ToLower(speaker.Name), lowerTerm) {
			return true
		}
	}
	return false
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
