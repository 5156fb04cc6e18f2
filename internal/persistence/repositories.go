package persistence

import "context"

// SessionRepository exposes read and bulk-replace operations for the session
// catalog.
type SessionRepository interface {
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessionsByDate(ctx context.Context, date string) ([]Session, error)
	ListSessionsByTrackPrefix(ctx context.Context, prefix string) ([]Session, error)
	// SearchSessions matches the term case-insensitively against session
	// titles, descriptions and speaker names.
	SearchSessions(ctx context.Context, term string) ([]Session, error)
	// ReplaceSessions clears the session table and inserts the given set in
	// bounded batches. The replacement is all-or-nothing.
	ReplaceSessions(ctx context.Context, sessions []Session) error
	CountSessions(ctx context.Context) (int, error)
}

// BookingRepository exposes CRUD operations for bookings.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) error
	DeleteBooking(ctx context.Context, id string) error
	UpdateBookingStatus(ctx context.Context, id string, status BookingStatus) error
	// GetBookingForSession resolves the booking for a (user, session) pair.
	GetBookingForSession(ctx context.Context, userID, sessionID string) (Booking, error)
	ListBookings(ctx context.Context, userID string) ([]Booking, error)
}

// ReminderRepository exposes CRUD operations for reminder settings.
type ReminderRepository interface {
	CreateReminder(ctx context.Context, reminder Reminder) error
	UpdateReminder(ctx context.Context, reminder Reminder) error
	DeleteReminder(ctx context.Context, id string) error
	DeleteRemindersForSession(ctx context.Context, userID, sessionID string) error
	ListReminders(ctx context.Context, userID string) ([]Reminder, error)
}

// PreferenceRepository stores the per-user preferences singleton.
type PreferenceRepository interface {
	// GetPreferences returns ErrNotFound when the user has never stored any.
	GetPreferences(ctx context.Context, userID string) (UserPreferences, error)
	// SavePreferences upserts the full preference record.
	SavePreferences(ctx context.Context, prefs UserPreferences) error
}

// MetaRepository is a small durable key-value side store used for the catalog
// version marker and the reminder snapshot.
type MetaRepository interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

// Store aggregates every repository plus whole-store maintenance operations.
type Store interface {
	SessionRepository
	BookingRepository
	ReminderRepository
	PreferenceRepository
	MetaRepository

	// ClearAll wipes every record kind.
	ClearAll(ctx context.Context) error
	Close() error
}

// Meta keys shared between components.
const (
	MetaKeyCatalogVersion     = "catalog_version"
	MetaKeyCatalogLastUpdated = "catalog_last_updated"
	MetaKeyReminderSnapshot   = "reminder_tasks"
)
