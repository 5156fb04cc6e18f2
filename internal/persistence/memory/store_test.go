package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
	"github.com/example/conference-assistant/internal/testfixtures"
)

func TestSessionsAreOrderedAndIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	description := "Original"
	err := store.ReplaceSessions(ctx, []persistence.Session{
		{ID: "b", Title: "Second", Track: "General", Date: "2025-01-20", StartTime: "11:00", EndTime: "12:00"},
		{ID: "a", Title: "First", Track: "General", Date: "2025-01-20", StartTime: "09:00", EndTime: "10:00", Description: &description},
	})
	if err != nil {
		t.Fatalf("ReplaceSessions returned error: %v", err)
	}

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions returned error: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "a" || sessions[1].ID != "b" {
		t.Fatalf("expected date/time ordering, got %v", sessions)
	}

	// Mutating a returned session must not leak into the store.
	*sessions[0].Description = "Mutated"
	reread, _ := store.GetSession(ctx, "a")
	if *reread.Description != "Original" {
		t.Errorf("stored session was mutated through a returned copy")
	}
}

func TestGetBookingForSessionPicksLatest(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	base := time.Date(2025, time.January, 19, 9, 0, 0, 0, time.UTC)
	older := testfixtures.NewBookingFixture(
		testfixtures.WithBookingID("bk-1"),
		testfixtures.WithBookingSession("s-1"),
		testfixtures.WithBookedAt(base),
		testfixtures.WithBookingStatus(persistence.BookingCancelled),
	).Persistence()
	newer := testfixtures.NewBookingFixture(
		testfixtures.WithBookingID("bk-2"),
		testfixtures.WithBookingSession("s-1"),
		testfixtures.WithBookedAt(base.Add(time.Hour)),
	).Persistence()
	for _, booking := range []persistence.Booking{older, newer} {
		if err := store.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("CreateBooking returned error: %v", err)
		}
	}

	resolved, err := store.GetBookingForSession(ctx, "user-1", "s-1")
	if err != nil {
		t.Fatalf("GetBookingForSession returned error: %v", err)
	}
	if resolved.ID != "bk-2" {
		t.Errorf("expected the most recent booking, got %q", resolved.ID)
	}
}

func TestNotFoundAndDuplicateSemantics(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}
	if _, err := store.GetPreferences(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown preferences, got %v", err)
	}
	if _, err := store.GetValue(ctx, "missing"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown meta key, got %v", err)
	}

	booking := testfixtures.NewBookingFixture(
		testfixtures.WithBookingID("bk-1"),
		testfixtures.WithBookingSession("s-1"),
	).Persistence()
	if err := store.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if err := store.CreateBooking(ctx, booking); !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for repeated ID, got %v", err)
	}

	if err := store.DeleteRemindersForSession(ctx, "user-1", "s-1"); err != nil {
		t.Errorf("expected reminder deletion to be idempotent, got %v", err)
	}
}

func TestClearAllResetsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if err := store.ReplaceSessions(ctx, []persistence.Session{{ID: "a", Title: "First", Track: "General", Date: "2025-01-20", StartTime: "09:00", EndTime: "10:00"}}); err != nil {
		t.Fatalf("ReplaceSessions returned error: %v", err)
	}
	if err := store.SetValue(ctx, "catalog_version", "1.0"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	if err := store.SavePreferences(ctx, persistence.DefaultPreferences("user-1")); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll returned error: %v", err)
	}

	if count, _ := store.CountSessions(ctx); count != 0 {
		t.Errorf("expected no sessions after ClearAll, got %d", count)
	}
	if _, err := store.GetValue(ctx, "catalog_version"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected meta to be wiped, got %v", err)
	}
	if _, err := store.GetPreferences(ctx, "user-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expected preferences to be wiped, got %v", err)
	}
}
