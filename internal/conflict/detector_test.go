package conflict

import (
	"context"
	"testing"

	"github.com/example/conference-assistant/internal/persistence"
	"github.com/example/conference-assistant/internal/persistence/memory"
	"github.com/example/conference-assistant/internal/testfixtures"
)

func session(id, date, start, end string) persistence.Session {
	return persistence.Session{
		ID:        id,
		Title:     "Session " + id,
		Track:     "Engineering",
		Date:      date,
		StartTime: start,
		EndTime:   end,
	}
}

func TestOverlappingBoundaryDoesNotConflict(t *testing.T) {
	existing := []persistence.Session{session("a", "2025-01-20", "09:00", "10:00")}
	candidate := session("b", "2025-01-20", "10:00", "11:00")

	if got := Overlapping(existing, candidate); len(got) != 0 {
		t.Fatalf("expected no conflicts for back-to-back sessions, got %d", len(got))
	}
}

func TestOverlappingOneMinuteOverlapConflicts(t *testing.T) {
	existing := []persistence.Session{session("a", "2025-01-20", "09:00", "10:01")}
	candidate := session("b", "2025-01-20", "10:00", "11:00")

	got := Overlapping(existing, candidate)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected conflict with session a, got %v", got)
	}
}

func TestOverlappingSymmetry(t *testing.T) {
	a := session("a", "2025-01-20", "10:00", "11:00")
	b := session("b", "2025-01-20", "10:30", "11:30")

	forward := Overlapping([]persistence.Session{a}, b)
	backward := Overlapping([]persistence.Session{b}, a)

	if len(forward) != 1 || forward[0].ID != "a" {
		t.Errorf("expected conflicts(b) to contain a, got %v", forward)
	}
	if len(backward) != 1 || backward[0].ID != "b" {
		t.Errorf("expected conflicts(a) to contain b, got %v", backward)
	}
}

func TestOverlappingIgnoresOtherDates(t *testing.T) {
	existing := []persistence.Session{session("a", "2025-01-21", "10:00", "11:00")}
	candidate := session("b", "2025-01-20", "10:00", "11:00")

	if got := Overlapping(existing, candidate); len(got) != 0 {
		t.Fatalf("expected no conflicts across dates, got %v", got)
	}
}

func TestOverlappingExcludesCandidateItself(t *testing.T) {
	a := session("a", "2025-01-20", "10:00", "11:00")

	if got := Overlapping([]persistence.Session{a}, a); len(got) != 0 {
		t.Fatalf("expected a session not to conflict with itself, got %v", got)
	}
}

func TestOverlappingContainment(t *testing.T) {
	existing := []persistence.Session{session("a", "2025-01-20", "09:00", "12:00")}
	candidate := session("b", "2025-01-20", "10:00", "10:30")

	if got := Overlapping(existing, candidate); len(got) != 1 {
		t.Fatalf("expected a fully containing session to conflict, got %v", got)
	}
}

func TestDetectorOnlyConsidersConfirmedBookings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	a := session("a", "2025-01-20", "10:00", "11:00")
	b := session("b", "2025-01-20", "10:30", "11:30")
	c := session("c", "2025-01-20", "10:45", "11:45")
	if err := store.ReplaceSessions(ctx, []persistence.Session{a, b, c}); err != nil {
		t.Fatalf("failed to seed sessions: %v", err)
	}

	mustCreate := func(booking persistence.Booking) {
		t.Helper()
		if err := store.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("failed to create booking: %v", err)
		}
	}
	mustCreate(testfixtures.NewBookingFixture(
		testfixtures.WithBookingSession("a"),
	).Persistence())
	mustCreate(testfixtures.NewBookingFixture(
		testfixtures.WithBookingSession("c"),
		testfixtures.WithBookingStatus(persistence.BookingCancelled),
	).Persistence())
	mustCreate(testfixtures.NewBookingFixture(
		testfixtures.WithBookingUser("user-2"),
		testfixtures.WithBookingSession("c"),
	).Persistence())

	detector := NewDetector(store, store)
	conflicts, err := detector.Conflicts(ctx, "user-1", b)
	if err != nil {
		t.Fatalf("Conflicts returned error: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ID != "a" {
		t.Fatalf("expected only the confirmed booking to conflict, got %v", conflicts)
	}
}

func TestDetectorSkipsBookingsForRemovedSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	b := session("b", "2025-01-20", "10:30", "11:30")
	if err := store.ReplaceSessions(ctx, []persistence.Session{b}); err != nil {
		t.Fatalf("failed to seed sessions: %v", err)
	}
	booking := testfixtures.NewBookingFixture(testfixtures.WithBookingSession("gone")).Persistence()
	if err := store.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}

	detector := NewDetector(store, store)
	conflicts, err := detector.Conflicts(ctx, "user-1", b)
	if err != nil {
		t.Fatalf("Conflicts returned error: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("expected no conflicts when the booked session was removed, got %v", conflicts)
	}
}
