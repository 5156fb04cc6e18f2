package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/conference-assistant/internal/persistence"
)

// Store implements persistence.Store on top of a SQLite database.
type Store struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

var _ persistence.Store = (*Store)(nil)

// Open creates a Store backed by the database at the given DSN. Callers must
// invoke Migrate before first use.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, mapper: NewErrorMapper()}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.pool.Close()
}

// ClearAll wipes every record kind in a single transaction. The schema and
// migration history remain.
func (s *Store) ClearAll(ctx context.Context) error {
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"sessions", "bookings", "reminders", "preferences", "meta"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}
