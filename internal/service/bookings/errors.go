package bookings

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrOutsideBusinessHours = errors.New("appointment is outside business hours")
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ConflictError reports the earliest existing booking whose occupied
// window intersects the requested one.
type ConflictError struct {
	BookingID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"requested time conflicts with booking %s (%s - %s)",
		e.BookingID,
		e.StartTime.Format(time.RFC3339),
		e.EndTime.Format(time.RFC3339),
	)
}
