package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// ProbeTimeout bounds the throwaway open/write/delete cycle. Some
// environments expose a storage backend that accepts the open and then hangs
// or fails on first write; the probe must not hang with it.
const ProbeTimeout = time.Second

// Probe checks whether a usable SQLite database can be created inside dir by
// performing a throwaway open, write and delete cycle. It returns
// persistence.ErrUnavailable (wrapped) when the backend cannot be used, in
// which case callers should degrade to the in-memory store instead of
// crashing.
func Probe(ctx context.Context, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	path := filepath.Join(dir, ".storage-probe.db")
	defer os.Remove(path)

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	defer db.Close()

	done := make(chan error, 1)
	go func() {
		_, err := db.ExecContext(ctx, `CREATE TABLE probe (id INTEGER PRIMARY KEY); DROP TABLE probe`)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: probe timed out", persistence.ErrUnavailable)
	}
}
