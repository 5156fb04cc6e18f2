package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// TaskSnapshot is the serialized form of a live reminder task. The snapshot
// is a recovery aid only: it is rewritten from the live task map after every
// mutation and never read as authoritative while live tasks exist.
type TaskSnapshot struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	SessionTitle   string    `json:"sessionTitle"`
	SessionStartAt time.Time `json:"sessionStartAt"`
	FireAt         time.Time `json:"fireAt"`
	MinutesBefore  int       `json:"minutesBefore"`
}

// SnapshotStore persists the flat snapshot of live reminder tasks.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) ([]TaskSnapshot, error)
	SaveSnapshot(ctx context.Context, tasks []TaskSnapshot) error
	ClearSnapshot(ctx context.Context) error
}

// MetaSnapshotStore stores the snapshot as a JSON value in the durable meta
// key-value table.
type MetaSnapshotStore struct {
	meta persistence.MetaRepository
}

// NewMetaSnapshotStore wraps a meta repository as a SnapshotStore.
func NewMetaSnapshotStore(meta persistence.MetaRepository) *MetaSnapshotStore {
	return &MetaSnapshotStore{meta: meta}
}

// LoadSnapshot reads the persisted task list. A missing key yields an empty
// list, not an error.
func (s *MetaSnapshotStore) LoadSnapshot(ctx context.Context) ([]TaskSnapshot, error) {
	value, err := s.meta.GetValue(ctx, persistence.MetaKeyReminderSnapshot)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load reminder snapshot: %w", err)
	}

	var tasks []TaskSnapshot
	if err := json.Unmarshal([]byte(value), &tasks); err != nil {
		return nil, fmt.Errorf("corrupt reminder snapshot: %w", err)
	}
	return tasks, nil
}

// SaveSnapshot rewrites the persisted task list.
func (s *MetaSnapshotStore) SaveSnapshot(ctx context.Context, tasks []TaskSnapshot) error {
	if tasks == nil {
		tasks = []TaskSnapshot{}
	}
	encoded, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode reminder snapshot: %w", err)
	}
	if err := s.meta.SetValue(ctx, persistence.MetaKeyReminderSnapshot, string(encoded)); err != nil {
		return fmt.Errorf("failed to save reminder snapshot: %w", err)
	}
	return nil
}

// ClearSnapshot removes the persisted task list.
func (s *MetaSnapshotStore) ClearSnapshot(ctx context.Context) error {
	return s.meta.DeleteValue(ctx, persistence.MetaKeyReminderSnapshot)
}
