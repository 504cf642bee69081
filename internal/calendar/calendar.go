// Package calendar mirrors bookings to an external calendar. Mirroring is
// best-effort: the booking store stays authoritative and a failed sync
// never fails the booking operation that triggered it.
package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	BookingID     uuid.UUID `json:"booking_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	ServiceName   string    `json:"service_name"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// Sync is the narrow contract against the external calendar provider.
// CreateEvent returns the provider's opaque event reference.
type Sync interface {
	CreateEvent(ctx context.Context, ev Event) (string, error)
	UpdateEvent(ctx context.Context, ref string, ev Event) error
	DeleteEvent(ctx context.Context, ref string) error
}

// Disabled is the Sync used when no calendar endpoint is configured.
// CreateEvent returns an empty reference, which callers treat as
// "no mirror exists".
type Disabled struct{}

func (Disabled) CreateEvent(ctx context.Context, ev Event) (string, error) { return "", nil }
func (Disabled) UpdateEvent(ctx context.Context, ref string, ev Event) error { return nil }
func (Disabled) DeleteEvent(ctx context.Context, ref string) error           { return nil }
