// Package application orchestrates the persistent store, the conflict
// detector and the reminder scheduler behind a single stateful facade for
// presentation layers.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/conference-assistant/internal/conflict"
	"github.com/example/conference-assistant/internal/persistence"
	"github.com/example/conference-assistant/internal/reminder"
)

// Options configures coordinator behavior at construction time.
type Options struct {
	// UserID scopes bookings, reminders and preferences.
	UserID string
	// BlockOnConflict turns detected conflicts from a warning into a hard
	// booking rejection. Off by default.
	BlockOnConflict bool
	// SecondaryReminderMinutes are additional reminder offsets created next
	// to the user's default offset on every booking. Defaults to [5].
	SecondaryReminderMinutes []int
	// IDGenerator mints booking and reminder identities.
	IDGenerator func() string
	// Now supplies the current time.
	Now func() time.Time
}

// Coordinator holds the current in-memory session list, filter, bookings and
// preferences, and exposes the booking and cancellation operations that tie
// store writes, conflict queries and reminder scheduling together.
type Coordinator struct {
	mu        sync.Mutex
	store     persistence.Store
	detector  *conflict.Detector
	scheduler *reminder.Scheduler
	logger    *slog.Logger

	userID           string
	blockOnConflict  bool
	secondaryOffsets []int
	idGenerator      func() string
	now              func() time.Time

	sessions []persistence.Session
	filtered []persistence.Session
	bookings []persistence.Booking
	prefs    persistence.UserPreferences
	filter   Filter
}

// NewCoordinator wires the coordinator's collaborators.
func NewCoordinator(store persistence.Store, detector *conflict.Detector, scheduler *reminder.Scheduler, opts Options, logger *slog.Logger) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SecondaryReminderMinutes == nil {
		opts.SecondaryReminderMinutes = []int{5}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:            store,
		detector:         detector,
		scheduler:        scheduler,
		logger:           logger,
		userID:           opts.UserID,
		blockOnConflict:  opts.BlockOnConflict,
		secondaryOffsets: opts.SecondaryReminderMinutes,
		idGenerator:      opts.IDGenerator,
		now:              opts.Now,
		prefs:            persistence.DefaultPreferences(opts.UserID),
	}
}

// Initialize loads preferences, the session catalog and the user's bookings
// into the in-memory caches. Read failures on the list paths degrade to empty
// caches rather than aborting startup; preferences always resolve because
// defaults fill in for anything missing.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefs, err := c.loadPreferences(ctx)
	if err != nil {
		return err
	}
	c.prefs = prefs
	c.scheduler.SetPreferences(prefs)

	sessions, err := c.store.ListSessions(ctx)
	if err != nil {
		c.loggerFrom(ctx).Warn("failed to load sessions, starting with empty catalog", "error", err)
		sessions = nil
	}
	c.sessions = sessions
	c.applyFilterLocked()

	c.refreshBookingsLocked(ctx)
	return nil
}

// ReloadSessions refreshes the cached session list from the store, typically
// after a catalog import, and reapplies the active filter.
func (c *Coordinator) ReloadSessions(ctx context.Context) error {
	sessions, err := c.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload sessions: %w", err)
	}

	c.mu.Lock()
	c.sessions = sessions
	c.applyFilterLocked()
	c.mu.Unlock()
	return nil
}

// Sessions returns a copy of the full cached session list.
func (c *Coordinator) Sessions() []persistence.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]persistence.Session(nil), c.sessions...)
}

// FilteredSessions returns a copy of the session list under the active filter.
func (c *Coordinator) FilteredSessions() []persistence.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]persistence.Session(nil), c.filtered...)
}

// Bookings returns a copy of the cached booking list.
func (c *Coordinator) Bookings() []persistence.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]persistence.Booking(nil), c.bookings...)
}

// Preferences returns the current effective preferences.
func (c *Coordinator) Preferences() persistence.UserPreferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// ActiveFilter returns the filter currently applied to the session list.
func (c *Coordinator) ActiveFilter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// ApplyFilter stores the filter and returns the sessions matching it.
func (c *Coordinator) ApplyFilter(filter Filter) []persistence.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = filter
	c.applyFilterLocked()
	return append([]persistence.Session(nil), c.filtered...)
}

// Book creates a confirmed booking for the session, reports overlapping
// confirmed bookings and arms reminders. Booking an already-booked session is
// benign. Conflicts warn by default; with BlockOnConflict the attempt fails
// and nothing is written.
func (c *Coordinator) Book(ctx context.Context, sessionID string) (BookingResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return BookingResult{}, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
		}
		return BookingResult{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	existing, err := c.store.GetBookingForSession(ctx, c.userID, sessionID)
	if err == nil && existing.Status == persistence.BookingConfirmed {
		return BookingResult{Booking: existing, AlreadyBooked: true}, nil
	}
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return BookingResult{}, fmt.Errorf("failed to check existing booking: %w", err)
	}

	conflicts, err := c.detector.Conflicts(ctx, c.userID, session)
	if err != nil {
		return BookingResult{}, err
	}
	if len(conflicts) > 0 {
		if c.blockOnConflict {
			return BookingResult{Conflicts: conflicts}, fmt.Errorf("%w: %s", ErrConflictBlocked, session.Title)
		}
		c.loggerFrom(ctx).Warn("booking despite schedule conflict", "session", sessionID, "conflicts", len(conflicts))
	}

	booking := persistence.Booking{
		ID:        c.idGenerator(),
		UserID:    c.userID,
		SessionID: sessionID,
		BookedAt:  c.now(),
		Status:    persistence.BookingConfirmed,
	}
	if err := c.store.CreateBooking(ctx, booking); err != nil {
		return BookingResult{}, fmt.Errorf("failed to create booking: %w", err)
	}

	c.refreshBookingsLocked(ctx)
	c.armRemindersLocked(ctx, session, booking)

	return BookingResult{Booking: booking, Conflicts: conflicts}, nil
}

// Cancel removes the user's booking for the session together with its
// reminder rows and any pending reminder tasks.
func (c *Coordinator) Cancel(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	booking, err := c.store.GetBookingForSession(ctx, c.userID, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoBooking, sessionID)
		}
		return fmt.Errorf("failed to resolve booking: %w", err)
	}

	if err := c.store.DeleteBooking(ctx, booking.ID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if err := c.store.DeleteRemindersForSession(ctx, c.userID, sessionID); err != nil {
		c.loggerFrom(ctx).Warn("failed to delete reminder settings", "session", sessionID, "error", err)
	}
	c.scheduler.CancelForSession(ctx, sessionID)

	c.refreshBookingsLocked(ctx)
	return nil
}

// Conflicts reports the user's confirmed booked sessions overlapping the
// named session.
func (c *Coordinator) Conflicts(ctx context.Context, sessionID string) ([]persistence.Session, error) {
	session, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return c.detector.Conflicts(ctx, c.userID, session)
}

// UpdatePreferences applies a partial update over the current effective
// preferences, persists the merged record and pushes it to the scheduler.
func (c *Coordinator) UpdatePreferences(ctx context.Context, update PreferenceUpdate) (persistence.UserPreferences, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := c.prefs
	if update.Interests != nil {
		merged.Interests = append([]string(nil), (*update.Interests)...)
	}
	if update.DefaultReminderMinutes != nil {
		merged.DefaultReminderMinutes = *update.DefaultReminderMinutes
	}
	if update.NotificationsEnabled != nil {
		merged.NotificationsEnabled = *update.NotificationsEnabled
	}
	if update.SoundEnabled != nil {
		merged.SoundEnabled = *update.SoundEnabled
	}
	if update.VibrationEnabled != nil {
		merged.VibrationEnabled = *update.VibrationEnabled
	}
	if update.Theme != nil {
		merged.Theme = *update.Theme
	}
	if update.Language != nil {
		merged.Language = *update.Language
	}
	if update.PageSize != nil {
		merged.PageSize = *update.PageSize
	}

	if err := c.store.SavePreferences(ctx, merged); err != nil {
		return persistence.UserPreferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}

	c.prefs = merged
	c.scheduler.SetPreferences(merged)
	return merged, nil
}

// Recommended returns catalog sessions matching any of the user's interests,
// compared case-insensitively against track labels and titles.
func (c *Coordinator) Recommended() []persistence.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.prefs.Interests) == 0 {
		return []persistence.Session{}
	}

	matches := make([]persistence.Session, 0)
	for _, session := range c.sessions {
		track := strings.ToLower(session.Track)
		title := strings.ToLower(session.Title)
		for _, interest := range c.prefs.Interests {
			needle := strings.ToLower(strings.TrimSpace(interest))
			if needle == "" {
				continue
			}
			if strings.Contains(track, needle) || strings.Contains(title, needle) {
				matches = append(matches, session)
				break
			}
		}
	}
	return matches
}

// ClearAll cancels every reminder task, wipes the store and resets the cached
// state to defaults.
func (c *Coordinator) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.scheduler.ClearAll(ctx); err != nil {
		c.loggerFrom(ctx).Warn("failed to clear reminder snapshot", "error", err)
	}
	if err := c.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	c.sessions = nil
	c.filtered = nil
	c.bookings = nil
	c.filter = Filter{}
	c.prefs = persistence.DefaultPreferences(c.userID)
	c.scheduler.SetPreferences(c.prefs)
	return nil
}

// loadPreferences resolves the effective preferences: stored values merged
// over defaults, or plain defaults when nothing is stored.
func (c *Coordinator) loadPreferences(ctx context.Context) (persistence.UserPreferences, error) {
	defaults := persistence.DefaultPreferences(c.userID)

	stored, err := c.store.GetPreferences(ctx, c.userID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return defaults, nil
		}
		return persistence.UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	// Fields added after a record was stored come back as zero values; fill
	// those from defaults. Booleans stay as stored since false is a valid
	// user choice.
	if stored.Interests == nil {
		stored.Interests = defaults.Interests
	}
	if stored.DefaultReminderMinutes == 0 {
		stored.DefaultReminderMinutes = defaults.DefaultReminderMinutes
	}
	if stored.Theme == "" {
		stored.Theme = defaults.Theme
	}
	if stored.Language == "" {
		stored.Language = defaults.Language
	}
	if stored.PageSize == 0 {
		stored.PageSize = defaults.PageSize
	}
	return stored, nil
}

// armRemindersLocked creates reminder rows and schedules tasks for a fresh
// booking. Reminder failures never fail the booking; they are logged and the
// booking stands.
func (c *Coordinator) armRemindersLocked(ctx context.Context, session persistence.Session, booking persistence.Booking) {
	if !c.prefs.NotificationsEnabled {
		return
	}

	offsets := []int{c.prefs.DefaultReminderMinutes}
	for _, minutes := range c.secondaryOffsets {
		if minutes != c.prefs.DefaultReminderMinutes {
			offsets = append(offsets, minutes)
		}
	}

	for _, minutes := range offsets {
		record := persistence.Reminder{
			ID:            c.idGenerator(),
			UserID:        c.userID,
			SessionID:     session.ID,
			MinutesBefore: minutes,
			Enabled:       true,
			Channel:       persistence.ChannelBrowser,
		}
		if err := c.store.CreateReminder(ctx, record); err != nil {
			c.loggerFrom(ctx).Warn("failed to store reminder setting", "session", session.ID, "minutes", minutes, "error", err)
		}
	}

	if err := c.scheduler.ScheduleMultiple(ctx, session, booking, offsets); err != nil {
		c.loggerFrom(ctx).Warn("failed to schedule reminders", "session", session.ID, "error", err)
	}
}

// refreshBookingsLocked reloads the booking cache. Failures log and keep the
// previous cache.
func (c *Coordinator) refreshBookingsLocked(ctx context.Context) {
	bookings, err := c.store.ListBookings(ctx, c.userID)
	if err != nil {
		c.loggerFrom(ctx).Warn("failed to refresh bookings", "error", err)
		return
	}
	c.bookings = bookings
}

// applyFilterLocked recomputes the filtered list from the cached sessions and
// the active filter.
func (c *Coordinator) applyFilterLocked() {
	filtered := make([]persistence.Session, 0, len(c.sessions))
	for _, session := range c.sessions {
		if matchesFilter(session, c.filter) {
			filtered = append(filtered, session)
		}
	}
	c.filtered = filtered
}

func matchesFilter(session persistence.Session, filter Filter) bool {
	if filter.Category != "" && !strings.Contains(strings.ToLower(session.Track), strings.ToLower(filter.Category)) {
		return false
	}
	if filter.Date != "" && session.Date != filter.Date {
		return false
	}
	if filter.TimeSlot != "" && timeSlotOf(session.StartTime) != filter.TimeSlot {
		return false
	}
	if filter.Search != "" && !matchesSearch(session, filter.Search) {
		return false
	}
	return true
}

// timeSlotOf buckets a start time by hour: [6,12) morning, [12,18) afternoon,
// everything else evening.
func timeSlotOf(startTime string) string {
	hourText, _, ok := strings.Cut(startTime, ":")
	if !ok {
		return TimeSlotEvening
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return TimeSlotEvening
	}
	switch {
	case hour >= 6 && hour < 12:
		return TimeSlotMorning
	case hour >= 12 && hour < 18:
		return TimeSlotAfternoon
	default:
		return TimeSlotEvening
	}
}

func matchesSearch(session persistence.Session, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(session.Title), needle) {
		return true
	}
	if session.Description != nil && strings.Contains(strings.ToLower(*session.Description), needle) {
		return true
	}
	for _, speaker := range session.Speakers {
		if strings.Contains(strings.ToLower(speaker.Name), needle) {
			return true
		}
	}
	return false
}
