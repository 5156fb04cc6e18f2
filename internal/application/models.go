package application

import "github.com/example/conference-assistant/internal/persistence"

// Filter narrows the visible session list. Empty fields apply no constraint;
// populated fields are combined with AND.
type Filter struct {
	// Category matches case-insensitively against the track label.
	Category string
	// Date matches the session date exactly (YYYY-MM-DD).
	Date string
	// TimeSlot is one of "morning", "afternoon" or "evening", derived from
	// the start hour rather than the advisory time-slot label.
	TimeSlot string
	// Search matches case-insensitively against title, description and
	// speaker names.
	Search string
}

// Time-slot bucket boundaries, by start hour.
const (
	TimeSlotMorning   = "morning"
	TimeSlotAfternoon = "afternoon"
	TimeSlotEvening   = "evening"
)

// BookingResult reports the outcome of a booking attempt.
type BookingResult struct {
	Booking persistence.Booking
	// AlreadyBooked is set when a confirmed booking for the session already
	// existed; the attempt is benign and no new record is created.
	AlreadyBooked bool
	// Conflicts lists the user's confirmed booked sessions that overlap the
	// requested one. Populated even when the booking is allowed.
	Conflicts []persistence.Session
}

// PreferenceUpdate is a partial preference change. Nil fields keep the stored
// value; the merge order is defaults, then stored values, then this update.
type PreferenceUpdate struct {
	Interests              *[]string
	DefaultReminderMinutes *int
	NotificationsEnabled   *bool
	SoundEnabled           *bool
	VibrationEnabled       *bool
	Theme                  *string
	Language               *string
	PageSize               *int
}
