// Package conflict implements time-overlap detection between a candidate
// session and a user's confirmed bookings.
package conflict

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/conference-assistant/internal/persistence"
)

// Overlapping returns every session from existing that overlaps the candidate
// in time. Overlap arithmetic is scoped to the same calendar date and uses
// half-open intervals: a session ending exactly when another starts does not
// conflict. The candidate itself is excluded by ID.
func Overlapping(existing []persistence.Session, candidate persistence.Session) []persistence.Session {
	candidateStart, err := minutesOfDay(candidate.StartTime)
	if err != nil {
		return nil
	}
	candidateEnd, err := minutesOfDay(candidate.EndTime)
	if err != nil {
		return nil
	}

	conflicts := make([]persistence.Session, 0)
	for _, session := range existing {
		if session.ID == candidate.ID {
			continue
		}
		if session.Date != candidate.Date {
			continue
		}

		start, err := minutesOfDay(session.StartTime)
		if err != nil {
			continue
		}
		end, err := minutesOfDay(session.EndTime)
		if err != nil {
			continue
		}

		if candidateStart < end && candidateEnd > start {
			conflicts = append(conflicts, session)
		}
	}
	return conflicts
}

// Detector resolves a user's confirmed bookings to sessions and runs overlap
// detection against them. It never mutates bookings; callers decide whether a
// conflict blocks, warns or is ignored.
type Detector struct {
	sessions persistence.SessionRepository
	bookings persistence.BookingRepository
}

// NewDetector wires the repositories needed for conflict queries.
func NewDetector(sessions persistence.SessionRepository, bookings persistence.BookingRepository) *Detector {
	return &Detector{sessions: sessions, bookings: bookings}
}

// Conflicts returns every session with a confirmed booking by the user that
// overlaps the candidate session.
func (d *Detector) Conflicts(ctx context.Context, userID string, candidate persistence.Session) ([]persistence.Session, error) {
	bookings, err := d.bookings.ListBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	booked := make([]persistence.Session, 0, len(bookings))
	for _, booking := range bookings {
		if booking.Status != persistence.BookingConfirmed {
			continue
		}
		session, err := d.sessions.GetSession(ctx, booking.SessionID)
		if err != nil {
			// Bookings hold soft references; a session removed by a catalog
			// update simply cannot conflict anymore.
			if errors.Is(err, persistence.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve session %s: %w", booking.SessionID, err)
		}
		booked = append(booked, session)
	}

	return Overlapping(booked, candidate), nil
}

// minutesOfDay converts an HH:MM string to minutes since midnight.
func minutesOfDay(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}
	return hours*60 + minutes, nil
}
