package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
)

// BookingTx is the slice of the store visible inside a day transaction.
// Everything it does happens under the day's lock, so a conflict check
// followed by a write cannot race another writer on the same day.
type BookingTx interface {
	ListBookings(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	FindBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
}

type BookingRepository interface {
	// InDayTransaction runs fn inside a transaction holding the lock for
	// the calendar day containing day. The transaction commits only if fn
	// returns nil; any error rolls everything back.
	InDayTransaction(ctx context.Context, day time.Time, fn func(ctx context.Context, tx BookingTx) error) error

	FindByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ListByDateRange(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Booking, error)

	// SetExternalEventRef records the calendar event mirror for a booking
	// after the authoritative write has committed.
	SetExternalEventRef(ctx context.Context, id uuid.UUID, ref string) error
}
