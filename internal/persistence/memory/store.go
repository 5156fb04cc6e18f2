// Package memory provides a map-backed persistence.Store used when the SQLite
// backend fails its usability probe. Nothing here survives a restart; it
// exists so the application can keep working in a reduced mode instead of
// crashing.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/conference-assistant/internal/persistence"
)

// Store is an in-memory persistence.Store implementation.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]persistence.Session
	bookings    map[string]persistence.Booking
	reminders   map[string]persistence.Reminder
	preferences map[string]persistence.UserPreferences
	meta        map[string]string
}

var _ persistence.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sessions:    make(map[string]persistence.Session),
		bookings:    make(map[string]persistence.Booking),
		reminders:   make(map[string]persistence.Reminder),
		preferences: make(map[string]persistence.UserPreferences),
		meta:        make(map[string]string),
	}
}

// Close is a no-op for the in-memory implementation.
func (s *Store) Close() error {
	return nil
}

// --- SessionRepository implementation ---

// ListSessions returns the full catalog ordered by date and start time.
func (s *Store) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]persistence.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, cloneSession(session))
	}
	sortSessions(sessions)
	return sessions, nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return cloneSession(session), nil
}

// ListSessionsByDate returns sessions on the given calendar date.
func (s *Store) ListSessionsByDate(ctx context.Context, date string) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]persistence.Session, 0)
	for _, session := range s.sessions {
		if session.Date == date {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sortSessions(sessions)
	return sessions, nil
}

// ListSessionsByTrackPrefix returns sessions whose track label starts with the
// given prefix, compared case-insensitively.
func (s *Store) ListSessionsByTrackPrefix(ctx context.Context, prefix string) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(prefix)
	sessions := make([]persistence.Session, 0)
	for _, session := range s.sessions {
		if strings.HasPrefix(strings.ToLower(session.Track), lower) {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sortSessions(sessions)
	return sessions, nil
}

// SearchSessions matches the term case-insensitively against titles,
// descriptions and speaker names.
func (s *Store) SearchSessions(ctx context.Context, term string) ([]persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(term)
	sessions := make([]persistence.Session, 0)
	for _, session := range s.sessions {
		if matchesTerm(session, lower) {
			sessions = append(sessions, cloneSession(session))
		}
	}
	sortSessions(sessions)
	return sessions, nil
}

// ReplaceSessions swaps the full session set.
func (s *Store) ReplaceSessions(ctx context.Context, sessions []persistence.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	replacement := make(map[string]persistence.Session, len(sessions))
	for _, session := range sessions {
		replacement[session.ID] = cloneSession(session)
	}
	s.sessions = replacement
	return nil
}

// CountSessions returns the number of sessions in the catalog.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// --- BookingRepository implementation ---

// CreateBooking stores a new booking.
func (s *Store) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[booking.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.bookings[booking.ID] = booking
	return nil
}

// DeleteBooking removes a booking by ID.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

// UpdateBookingStatus transitions a booking to the given status.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status persistence.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[id]
	if !ok {
		return persistence.ErrNotFound
	}
	booking.Status = status
	s.bookings[id] = booking
	return nil
}

// GetBookingForSession resolves the booking for a (user, session) pair.
func (s *Store) GetBookingForSession(ctx context.Context, userID, sessionID string) (persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *persistence.Booking
	for _, booking := range s.bookings {
		if booking.UserID != userID || booking.SessionID != sessionID {
			continue
		}
		if found == nil || booking.BookedAt.After(found.BookedAt) {
			b := booking
			found = &b
		}
	}
	if found == nil {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return *found, nil
}

// ListBookings returns all bookings for a user ordered by booking time.
func (s *Store) ListBookings(ctx context.Context, userID string) ([]persistence.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]persistence.Booking, 0)
	for _, booking := range s.bookings {
		if booking.UserID == userID {
			bookings = append(bookings, booking)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].BookedAt.Equal(bookings[j].BookedAt) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].BookedAt.Before(bookings[j].BookedAt)
	})
	return bookings, nil
}

// --- ReminderRepository implementation ---

// CreateReminder stores a new reminder setting.
func (s *Store) CreateReminder(ctx context.Context, reminder persistence.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[reminder.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.reminders[reminder.ID] = reminder
	return nil
}

// UpdateReminder rewrites an existing reminder setting.
func (s *Store) UpdateReminder(ctx context.Context, reminder persistence.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[reminder.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.reminders[reminder.ID] = reminder
	return nil
}

// DeleteReminder removes a reminder by ID.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}

// DeleteRemindersForSession removes every reminder the user holds for a session.
func (s *Store) DeleteRemindersForSession(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, reminder := range s.reminders {
		if reminder.UserID == userID && reminder.SessionID == sessionID {
			delete(s.reminders, id)
		}
	}
	return nil
}

// ListReminders returns all reminder settings for a user.
func (s *Store) ListReminders(ctx context.Context, userID string) ([]persistence.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminders := make([]persistence.Reminder, 0)
	for _, reminder := range s.reminders {
		if reminder.UserID == userID {
			reminders = append(reminders, reminder)
		}
	}
	sort.Slice(reminders, func(i, j int) bool {
		if reminders[i].SessionID == reminders[j].SessionID {
			return reminders[i].MinutesBefore < reminders[j].MinutesBefore
		}
		return reminders[i].SessionID < reminders[j].SessionID
	})
	return reminders, nil
}

// --- PreferenceRepository implementation ---

// GetPreferences retrieves stored preferences for a user.
func (s *Store) GetPreferences(ctx context.Context, userID string) (persistence.UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.preferences[userID]
	if !ok {
		return persistence.UserPreferences{}, persistence.ErrNotFound
	}
	return clonePreferences(prefs), nil
}

// SavePreferences upserts the full preference record.
func (s *Store) SavePreferences(ctx context.Context, prefs persistence.UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences[prefs.UserID] = clonePreferences(prefs)
	return nil
}

// --- MetaRepository implementation ---

// GetValue reads a value from the meta side store.
func (s *Store) GetValue(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.meta[key]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return value, nil
}

// SetValue upserts a value in the meta side store.
func (s *Store) SetValue(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meta[key] = value
	return nil
}

// DeleteValue removes a key from the meta side store.
func (s *Store) DeleteValue(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.meta, key)
	return nil
}

// ClearAll wipes every record kind.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[string]persistence.Session)
	s.bookings = make(map[string]persistence.Booking)
	s.reminders = make(map[string]persistence.Reminder)
	s.preferences = make(map[string]persistence.UserPreferences)
	s.meta = make(map[string]string)
	return nil
}

// --- Helpers ---

func cloneSession(session persistence.Session) persistence.Session {
	var description *string
	if session.Description != nil {
		copied := *session.Description
		description = &copied
	}

	speakers := make([]persistence.Speaker, len(session.Speakers))
	copy(speakers, session.Speakers)

	session.Description = description
	session.Speakers = speakers
	return session
}

func clonePreferences(prefs persistence.UserPreferences) persistence.UserPreferences {
	interests := make([]string, len(prefs.Interests))
	copy(interests, prefs.Interests)
	prefs.Interests = interests
	return prefs
}

func sortSessions(sessions []persistence.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date < sessions[j].Date
		}
		if sessions[i].StartTime != sessions[j].StartTime {
			return sessions[i].StartTime < sessions[j].StartTime
		}
		return sessions[i].ID < sessions[j].ID
	})
}

func matchesTerm(session persistence.Session, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(session.Title), lowerTerm) {
		return true
	}
	if session.Description != nil && strings.Contains(strings.ToLower(*session.Description), lowerTerm) {
		return true
	}
	for _, speaker := range session.Speakers {
		if strings.Contains(strings.ToLower(speaker.Name), lowerTerm) {
			return true
		}
	}
	return false
}
