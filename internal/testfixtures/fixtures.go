package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

var (
	sessionCounter uint64
	bookingCounter uint64
)

var referenceTime = time.Date(2025, time.January, 20, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SessionFixture represents a deterministic catalog session record.
type SessionFixture struct {
	ID          string
	Title       string
	Track       string
	Date        string
	StartTime   string
	EndTime     string
	TimeSlot    string
	Description *string
	Speakers    []persistence.Speaker
	ImportedAt  time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. Successive fixtures default to back-to-back one-hour slots on
// the same day so they never overlap unless a test says so.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	startHour := 8 + int(idx)%10
	fixture := SessionFixture{
		ID:         fmt.Sprintf("session-%03d", idx),
		Title:      fmt.Sprintf("Session %03d", idx),
		Track:      "Engineering | Backend",
		Date:       "2025-01-20",
		StartTime:  fmt.Sprintf("%02d:00", startHour),
		EndTime:    fmt.Sprintf("%02d:00", startHour+1),
		TimeSlot:   "morning",
		Speakers:   []persistence.Speaker{{Name: fmt.Sprintf("Speaker %03d", idx), Title: "Engineer"}},
		ImportedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionTitle overrides the generated title.
func WithSessionTitle(title string) SessionOption {
	return func(f *SessionFixture) {
		f.Title = title
	}
}

// WithSessionTrack overrides the generated track label.
func WithSessionTrack(track string) SessionOption {
	return func(f *SessionFixture) {
		f.Track = track
	}
}

// WithSessionDate overrides the generated date.
func WithSessionDate(date string) SessionOption {
	return func(f *SessionFixture) {
		f.Date = date
	}
}

// WithSessionTimes overrides the generated start and end times.
func WithSessionTimes(start, end string) SessionOption {
	return func(f *SessionFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithSessionTimeSlot overrides the advisory time-slot label.
func WithSessionTimeSlot(slot string) SessionOption {
	return func(f *SessionFixture) {
		f.TimeSlot = slot
	}
}

// WithSessionDescription sets the description on the fixture.
func WithSessionDescription(description string) SessionOption {
	return func(f *SessionFixture) {
		value := description
		f.Description = &value
	}
}

// WithSessionSpeakers overrides the generated speaker list.
func WithSessionSpeakers(speakers ...persistence.Speaker) SessionOption {
	return func(f *SessionFixture) {
		f.Speakers = speakers
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		Title:       f.Title,
		Track:       f.Track,
		Date:        f.Date,
		StartTime:   f.StartTime,
		EndTime:     f.EndTime,
		TimeSlot:    f.TimeSlot,
		Description: f.Description,
		Speakers:    f.Speakers,
		ImportedAt:  f.ImportedAt,
	}
}

// BookingFixture represents a deterministic booking record.
type BookingFixture struct {
	ID        string
	UserID    string
	SessionID string
	BookedAt  time.Time
	Status    persistence.BookingStatus
}

// BookingOption configures the generated booking fixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a deterministic booking fixture with optional
// overrides.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := BookingFixture{
		ID:        fmt.Sprintf("booking-%03d", idx),
		UserID:    "user-1",
		SessionID: fmt.Sprintf("session-%03d", idx),
		BookedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
		Status:    persistence.BookingConfirmed,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookingID overrides the generated booking ID.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) {
		f.ID = id
	}
}

// WithBookingUser overrides the generated user ID.
func WithBookingUser(userID string) BookingOption {
	return func(f *BookingFixture) {
		f.UserID = userID
	}
}

// WithBookingSession overrides the referenced session ID.
func WithBookingSession(sessionID string) BookingOption {
	return func(f *BookingFixture) {
		f.SessionID = sessionID
	}
}

// WithBookingStatus overrides the booking status.
func WithBookingStatus(status persistence.BookingStatus) BookingOption {
	return func(f *BookingFixture) {
		f.Status = status
	}
}

// WithBookedAt overrides the booking timestamp.
func WithBookedAt(t time.Time) BookingOption {
	return func(f *BookingFixture) {
		f.BookedAt = t
	}
}

// Persistence returns the fixture as a persistence.Booking value.
func (f BookingFixture) Persistence() persistence.Booking {
	return persistence.Booking{
		ID:        f.ID,
		UserID:    f.UserID,
		SessionID: f.SessionID,
		BookedAt:  f.BookedAt,
		Status:    f.Status,
	}
}
