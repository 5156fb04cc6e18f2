package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/conference-assistant/internal/persistence"
)

func TestProbeSucceedsInWritableDirectory(t *testing.T) {
	if err := Probe(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("expected the probe to pass in a writable directory, got %v", err)
	}
}

func TestProbeFailsWhenDirectoryIsNotUsable(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocked, []byte("not a directory"), 0o600); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}

	err := Probe(context.Background(), blocked)
	if !errors.Is(err, persistence.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for an unusable directory, got %v", err)
	}
}

func TestProbeCleansUpAfterItself(t *testing.T) {
	dir := t.TempDir()
	if err := Probe(context.Background(), dir); err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".storage-probe.db")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the probe file to be removed, got %v", err)
	}
}
