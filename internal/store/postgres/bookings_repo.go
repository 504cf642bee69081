package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func (r *BookingRepo) InDayTransaction(ctx context.Context, day time.Time, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDay(ctx, tx, day); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

// lockDay serializes writers for one calendar day. The key is the day in
// the caller's location, so operations on different days never contend.
func lockDay(ctx context.Context, tx bun.Tx, day time.Time) error {
	key := "bookings:" + day.Format("2006-01-02")
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func (r *BookingRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepo) ListByDateRange(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("start_time >= ?", windowStart).
		Where("start_time < ?", windowEnd).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) SetExternalEventRef(ctx context.Context, id uuid.UUID, ref string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("external_event_ref = ?", ref).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListBookings returns bookings whose occupied window (end time plus
// trailing buffer) intersects [windowStart, windowEnd).
func (t bookingTx) ListBookings(ctx context.Context, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := t.tx.NewSelect().
		Model(&rows).
		Where("start_time < ?", windowEnd).
		Where("end_time + make_interval(mins => buffer_minutes) > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t bookingTx) FindBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := t.tx.NewSelect().
		Model(&b).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (t bookingTx) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.Booking{}, mapConstraintError(err)
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return b, nil
}

func (t bookingTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	res, err := t.tx.NewUpdate().
		Model(&m).
		Column("customer_name", "customer_phone", "service_id", "start_time", "end_time", "buffer_minutes", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, mapConstraintError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		return domain.Booking{}, store.ErrNotFound
	}
	b.UpdatedAt = m.UpdatedAt
	return b, nil
}

func (t bookingTx) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapConstraintError surfaces the bookings_no_overlap exclusion constraint
// as store.ErrConflict. The constraint is the database-level backstop for
// the in-transaction conflict check.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
			return store.ErrConflict
		}
	}
	return err
}
