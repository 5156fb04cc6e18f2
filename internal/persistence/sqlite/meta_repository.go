package sqlite

import (
	"context"

	"github.com/example/conference-assistant/internal/persistence"
)

// GetValue reads a value from the meta key-value side store. Returns
// persistence.ErrNotFound for unknown keys.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.DB().QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", s.mapper.MapError(err)
	}
	return value, nil
}

// SetValue upserts a value in the meta key-value side store.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	query := `INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.pool.DB().ExecContext(ctx, query, key, value); err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

// DeleteValue removes a key from the meta store. Unknown keys are ignored.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	if _, err := s.pool.DB().ExecContext(ctx, `DELETE FROM meta WHERE key = ?`, key); err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

var _ persistence.MetaRepository = (*Store)(nil)
