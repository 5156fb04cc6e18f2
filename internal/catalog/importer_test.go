package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
	"github.com/example/conference-assistant/internal/persistence/memory"
	"github.com/example/conference-assistant/internal/testfixtures"
)

func sessionDoc(id, title string) string {
	return fmt.Sprintf(`{"id":%q,"title":%q,"track":"Engineering | Backend","date":"2025-01-20","startTime":"09:00","endTime":"10:00"}`, id, title)
}

func envelopeDoc(version string, sessions ...string) []byte {
	body := ""
	for i, s := range sessions {
		if i > 0 {
			body += ","
		}
		body += s
	}
	return []byte(fmt.Sprintf(`{"version":%q,"lastUpdated":"2025-01-19T12:00:00Z","sessions":[%s]}`, version, body))
}

func newImporter(store ImporterStore, transport Transport) *Importer {
	clock := testfixtures.NewClock(time.Time{})
	return NewImporter(store, transport, "https://example.com/catalog.json", clock.NowFunc(), nil)
}

func TestInitializeImportsIntoEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport(envelopeDoc("1.0", sessionDoc("s-1", "Keynote")))

	result, err := newImporter(store, transport).Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !result.Imported || result.Sessions != 1 || result.Version != "1.0" {
		t.Fatalf("unexpected result: %+v", result)
	}

	version, err := store.GetValue(ctx, persistence.MetaKeyCatalogVersion)
	if err != nil || version != "1.0" {
		t.Errorf("expected stored version 1.0, got %q (err %v)", version, err)
	}
	if _, err := store.GetSession(ctx, "s-1"); err != nil {
		t.Errorf("expected session s-1 to be stored: %v", err)
	}
}

func TestInitializeSkipsWhenVersionMatches(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport(envelopeDoc("1.0", sessionDoc("s-1", "Keynote")))
	importer := newImporter(store, transport)

	if _, err := importer.Initialize(ctx); err != nil {
		t.Fatalf("first Initialize returned error: %v", err)
	}

	result, err := importer.Initialize(ctx)
	if err != nil {
		t.Fatalf("second Initialize returned error: %v", err)
	}
	if result.Imported {
		t.Errorf("expected no reimport when the version matches")
	}
	if result.Sessions != 1 || result.Version != "1.0" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestInitializeReimportsOnVersionMismatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport(envelopeDoc("1.0", sessionDoc("s-1", "Keynote")))
	importer := newImporter(store, transport)

	if _, err := importer.Initialize(ctx); err != nil {
		t.Fatalf("first Initialize returned error: %v", err)
	}

	transport.SetPayload(envelopeDoc("2.0", sessionDoc("s-2", "Workshop"), sessionDoc("s-3", "Panel")))
	result, err := importer.Initialize(ctx)
	if err != nil {
		t.Fatalf("second Initialize returned error: %v", err)
	}
	if !result.Imported || result.Sessions != 2 || result.Version != "2.0" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := store.GetSession(ctx, "s-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected old session to be replaced, got %v", err)
	}
}

func TestInitializeBareArrayAlwaysReimports(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport([]byte("[" + sessionDoc("s-1", "Keynote") + "]"))
	importer := newImporter(store, transport)

	if _, err := importer.Initialize(ctx); err != nil {
		t.Fatalf("first Initialize returned error: %v", err)
	}
	result, err := importer.Initialize(ctx)
	if err != nil {
		t.Fatalf("second Initialize returned error: %v", err)
	}
	if !result.Imported {
		t.Errorf("expected the unversioned shape to reimport on every cold start")
	}
}

func TestLoadKeepsStoredCatalogOnValidationFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport(envelopeDoc("1.0", sessionDoc("s-1", "Keynote")))
	importer := newImporter(store, transport)

	if _, err := importer.Initialize(ctx); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	transport.SetPayload(envelopeDoc("2.0", `{"id":"s-2","track":"General","date":"2025-01-20","startTime":"09:00","endTime":"10:00"}`))
	if _, err := importer.Load(ctx); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if _, err := store.GetSession(ctx, "s-1"); err != nil {
		t.Errorf("expected stored catalog to survive the failed load: %v", err)
	}
	version, err := store.GetValue(ctx, persistence.MetaKeyCatalogVersion)
	if err != nil || version != "1.0" {
		t.Errorf("expected version marker to stay at 1.0, got %q (err %v)", version, err)
	}
}

func TestLoadEmptyPayload(t *testing.T) {
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport([]byte("   "))

	if _, err := newImporter(store, transport).Load(context.Background()); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestLoadClassifiesTimeouts(t *testing.T) {
	store := memory.NewStore()
	transport := testfixtures.NewStaticTransport(nil)
	transport.FailWith(context.DeadlineExceeded)

	if _, err := newImporter(store, transport).Load(context.Background()); !errors.Is(err, ErrFetchTimeout) {
		t.Fatalf("expected ErrFetchTimeout, got %v", err)
	}
}

func TestCatalogStatsGroupsByPrimaryCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	err := store.ReplaceSessions(ctx, []persistence.Session{
		{ID: "s-1", Track: "Engineering | Backend", Date: "2025-01-20"},
		{ID: "s-2", Track: "Engineering | Frontend", Date: "2025-01-20"},
		{ID: "s-3", Track: "Product", Date: "2025-01-21"},
	})
	if err != nil {
		t.Fatalf("failed to seed sessions: %v", err)
	}

	stats, err := newImporter(store, testfixtures.NewStaticTransport(nil)).CatalogStats(ctx)
	if err != nil {
		t.Fatalf("CatalogStats returned error: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByCategory["Engineering"] != 2 || stats.ByCategory["Product"] != 1 {
		t.Errorf("unexpected category counts: %v", stats.ByCategory)
	}
	if stats.ByDate["2025-01-20"] != 2 || stats.ByDate["2025-01-21"] != 1 {
		t.Errorf("unexpected date counts: %v", stats.ByDate)
	}
}
