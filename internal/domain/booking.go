package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service is a catalog offering. DurationMinutes is the chair time,
// BufferMinutes the cleanup window trailing it during which the chair
// stays unavailable.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              string    `bun:"id,pk"`
	Name            string    `bun:"name,notnull"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	BufferMinutes   int       `bun:"buffer_minutes,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// Booking occupies the shop for one customer and one service.
// EndTime and BufferMinutes are snapshotted from the service at
// create/update time; later catalog edits never change persisted rows.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	CustomerName     string    `bun:"customer_name,notnull"`
	CustomerPhone    string    `bun:"customer_phone,notnull"`
	ServiceID        string    `bun:"service_id,notnull"`
	StartTime        time.Time `bun:"start_time,notnull"`
	EndTime          time.Time `bun:"end_time,notnull"`
	BufferMinutes    int       `bun:"buffer_minutes,notnull"`
	ExternalEventRef string    `bun:"external_event_ref,nullzero"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,notnull"`
}

// OccupiedUntil is the exclusive end of the booking's occupied window,
// end time plus the trailing buffer.
func (b Booking) OccupiedUntil() time.Time {
	return b.EndTime.Add(time.Duration(b.BufferMinutes) * time.Minute)
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
