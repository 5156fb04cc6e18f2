package persistence

import "time"

// Session represents a single conference talk or workshop in the active
// catalog. Sessions are immutable once imported and are replaced wholesale
// when the catalog version changes.
type Session struct {
	ID          string
	Title       string
	Track       string
	Date        string
	StartTime   string
	EndTime     string
	TimeSlot    string
	Description *string
	Speakers    []Speaker
	ImportedAt  time.Time
}

// Speaker identifies a person presenting a session.
type Speaker struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// TrackDelimiter separates the primary category from the optional
// sub-category inside a session track label.
const TrackDelimiter = " | "

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingConflict  BookingStatus = "conflict"
)

// Booking records a user's intent to attend a session. The session reference
// is soft; storage does not enforce it.
type Booking struct {
	ID        string
	UserID    string
	SessionID string
	BookedAt  time.Time
	Status    BookingStatus
}

// ReminderChannel enumerates how a reminder notification is delivered.
type ReminderChannel string

const (
	ChannelBrowser   ReminderChannel = "browser"
	ChannelSound     ReminderChannel = "sound"
	ChannelVibration ReminderChannel = "vibration"
)

// Reminder configures a notification offset for a booked session. Reminders
// are created alongside a confirmed booking and removed when it is cancelled.
type Reminder struct {
	ID            string
	UserID        string
	SessionID     string
	MinutesBefore int
	Enabled       bool
	Channel       ReminderChannel
}

// UserPreferences is the per-user settings singleton. Reads merge stored
// values over defaults so fields added later never surface as zero values
// unexpectedly.
type UserPreferences struct {
	UserID                 string
	Interests              []string
	DefaultReminderMinutes int
	NotificationsEnabled   bool
	SoundEnabled           bool
	VibrationEnabled       bool
	Theme                  string
	Language               string
	PageSize               int
}

// DefaultPreferences returns the preference values applied when a user has
// never stored any.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:                 userID,
		Interests:              []string{},
		DefaultReminderMinutes: 15,
		NotificationsEnabled:   true,
		SoundEnabled:           true,
		VibrationEnabled:       true,
		Theme:                  "auto",
		Language:               "en-US",
		PageSize:               10,
	}
}

// CatalogVersion is the marker comparing the stored session set against the
// external catalog resource. It lives in the meta table, outside the session
// table it guards.
type CatalogVersion struct {
	Version     string
	LastUpdated string
}
