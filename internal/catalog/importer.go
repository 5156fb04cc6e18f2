// Package catalog keeps the stored session set synchronized with a versioned
// external resource.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/example/conference-assistant/internal/logging"
	"github.com/example/conference-assistant/internal/persistence"
)

// ImporterStore captures the persistence interactions needed by the importer.
type ImporterStore interface {
	persistence.SessionRepository
	persistence.MetaRepository
}

// Importer fetches, validates and imports the session catalog.
type Importer struct {
	store     ImporterStore
	transport Transport
	url       string
	now       func() time.Time
	logger    *slog.Logger
}

// NewImporter wires dependencies for catalog synchronization.
func NewImporter(store ImporterStore, transport Transport, url string, now func() time.Time, logger *slog.Logger) *Importer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		store:     store,
		transport: transport,
		url:       url,
		now:       now,
		logger:    logger,
	}
}

// SyncResult reports what a synchronization attempt did.
type SyncResult struct {
	// Imported is true when the session table was replaced.
	Imported bool
	// Sessions is the number of sessions now in the catalog.
	Sessions int
	// Version is the catalog version tag after the sync, empty for the
	// legacy bare-array shape.
	Version string
}

// Initialize performs the cold-start synchronization: a full load when the
// session table is empty, otherwise a version comparison that reloads only on
// mismatch. The legacy bare-array shape carries no version and is reimported
// on every cold start.
func (i *Importer) Initialize(ctx context.Context) (SyncResult, error) {
	count, err := i.store.CountSessions(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to count sessions: %w", err)
	}

	pl, err := i.fetchAndParse(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	if count > 0 && pl.shape == shapeEnvelope {
		stored, err := i.store.GetValue(ctx, persistence.MetaKeyCatalogVersion)
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			return SyncResult{}, fmt.Errorf("failed to read catalog version: %w", err)
		}
		if stored == pl.version {
			i.loggerFrom(ctx).Debug("catalog up to date", "version", stored, "sessions", count)
			return SyncResult{Imported: false, Sessions: count, Version: stored}, nil
		}
	}

	return i.importPayload(ctx, pl)
}

// Load unconditionally fetches the resource and replaces the session table
// after validation. Used for explicit refreshes.
func (i *Importer) Load(ctx context.Context) (SyncResult, error) {
	pl, err := i.fetchAndParse(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	return i.importPayload(ctx, pl)
}

// Version returns the stored catalog version marker, if any.
func (i *Importer) Version(ctx context.Context) (persistence.CatalogVersion, error) {
	version, err := i.store.GetValue(ctx, persistence.MetaKeyCatalogVersion)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.CatalogVersion{}, nil
		}
		return persistence.CatalogVersion{}, err
	}
	lastUpdated, err := i.store.GetValue(ctx, persistence.MetaKeyCatalogLastUpdated)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return persistence.CatalogVersion{}, err
	}
	return persistence.CatalogVersion{Version: version, LastUpdated: lastUpdated}, nil
}

// Stats summarizes the stored catalog by primary track category and date.
type Stats struct {
	Total      int
	ByCategory map[string]int
	ByDate     map[string]int
}

// CatalogStats aggregates counts over the stored session set.
func (i *Importer) CatalogStats(ctx context.Context) (Stats, error) {
	sessions, err := i.store.ListSessions(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:      len(sessions),
		ByCategory: make(map[string]int),
		ByDate:     make(map[string]int),
	}
	for _, session := range sessions {
		category, _, _ := strings.Cut(session.Track, persistence.TrackDelimiter)
		stats.ByCategory[category]++
		stats.ByDate[session.Date]++
	}
	return stats, nil
}

func (i *Importer) fetchAndParse(ctx context.Context) (payload, error) {
	data, err := i.transport.Fetch(ctx, i.url)
	if err != nil {
		if isTimeout(err) {
			return payload{}, fmt.Errorf("%w: %v", ErrFetchTimeout, err)
		}
		return payload{}, fmt.Errorf("catalog fetch failed: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return payload{}, ErrEmptyPayload
	}

	pl, err := parsePayload(data)
	if err != nil {
		return payload{}, err
	}
	return pl, nil
}

func (i *Importer) importPayload(ctx context.Context, pl payload) (SyncResult, error) {
	sessions, err := normalizeRecords(pl.records, i.now())
	if err != nil {
		return SyncResult{}, err
	}

	if err := i.store.ReplaceSessions(ctx, sessions); err != nil {
		return SyncResult{}, fmt.Errorf("failed to replace sessions: %w", err)
	}

	if pl.shape == shapeEnvelope {
		if err := i.store.SetValue(ctx, persistence.MetaKeyCatalogVersion, pl.version); err != nil {
			return SyncResult{}, fmt.Errorf("failed to store catalog version: %w", err)
		}
		if err := i.store.SetValue(ctx, persistence.MetaKeyCatalogLastUpdated, pl.lastUpdated); err != nil {
			return SyncResult{}, fmt.Errorf("failed to store catalog timestamp: %w", err)
		}
	}

	i.loggerFrom(ctx).Info("catalog imported", "sessions", len(sessions), "version", pl.version)
	return SyncResult{Imported: true, Sessions: len(sessions), Version: pl.version}, nil
}

// loggerFrom prefers a logger carried on the context over the importer's own.
func (i *Importer) loggerFrom(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return i.logger
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
