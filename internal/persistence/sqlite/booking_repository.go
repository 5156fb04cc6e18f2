package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/conference-assistant/internal/persistence"
)

// CreateBooking stores a new booking.
func (s *Store) CreateBooking(ctx context.Context, booking persistence.Booking) error {
	if booking.ID == "" || booking.UserID == "" || booking.SessionID == "" {
		return fmt.Errorf("%w: booking requires id, user_id and session_id", persistence.ErrInvalidState)
	}

	query := `INSERT INTO bookings (id, user_id, session_id, booked_at, status) VALUES (?, ?, ?, ?, ?)`
	_, err := s.pool.DB().ExecContext(ctx, query,
		booking.ID,
		booking.UserID,
		booking.SessionID,
		booking.BookedAt.UTC().Format(time.RFC3339),
		string(booking.Status),
	)
	if err != nil {
		return s.mapper.MapError(err)
	}
	return nil
}

// DeleteBooking removes a booking by ID.
func (s *Store) DeleteBooking(ctx context.Context, id string) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// UpdateBookingStatus transitions a booking to the given status.
func (s *Store) UpdateBookingStatus(ctx context.Context, id string, status persistence.BookingStatus) error {
	result, err := s.pool.DB().ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBookingForSession resolves the booking for a (user, session) pair.
func (s *Store) GetBookingForSession(ctx context.Context, userID, sessionID string) (persistence.Booking, error) {
	query := `SELECT id, user_id, session_id, booked_at, status FROM bookings WHERE user_id = ? AND session_id = ? ORDER BY booked_at DESC LIMIT 1`
	row := s.pool.DB().QueryRowContext(ctx, query, userID, sessionID)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		return persistence.Booking{}, s.mapper.MapError(err)
	}
	return booking, nil
}

// ListBookings returns all bookings for a user ordered by booking time.
func (s *Store) ListBookings(ctx context.Context, userID string) ([]persistence.Booking, error) {
	query := `SELECT id, user_id, session_id, booked_at, status FROM bookings WHERE user_id = ? ORDER BY booked_at, id`
	rows, err := s.pool.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	bookings := make([]persistence.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return bookings, nil
}

func scanBooking(scan func(dest ...interface{}) error) (persistence.Booking, error) {
	var booking persistence.Booking
	var bookedAt string
	var status string

	err := scan(&booking.ID, &booking.UserID, &booking.SessionID, &bookedAt, &status)
	if err != nil {
		return persistence.Booking{}, err
	}

	booking.Status = persistence.BookingStatus(status)
	parsed, err := time.Parse(time.RFC3339, bookedAt)
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse booked_at: %w", err)
	}
	booking.BookedAt = parsed
	return booking, nil
}
