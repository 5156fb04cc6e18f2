package application

import "errors"

var (
	// ErrUnknownSession is returned when a booking or conflict query names a
	// session that is not part of the current catalog.
	ErrUnknownSession = errors.New("session not found in the current catalog")

	// ErrConflictBlocked is returned by Book when conflict blocking is enabled
	// and the requested session overlaps an existing confirmed booking.
	ErrConflictBlocked = errors.New("session overlaps an existing booking")

	// ErrNoBooking is returned by Cancel when the user holds no booking for
	// the session.
	ErrNoBooking = errors.New("no booking exists for this session")
)
