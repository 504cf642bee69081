package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/calendar"
	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/store"
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// Service orchestrates booking operations: resolve the catalog service,
// compute the candidate interval, validate business hours, check conflicts
// under the day lock, persist, then mirror to the external calendar.
// Only the store is authoritative; calendar failures are logged and never
// change the operation's outcome.
type Service struct {
	repo    store.BookingRepository
	catalog store.ServiceCatalog
	cal     calendar.Sync
	hours   domain.BusinessHours
	loc     *time.Location
	log     *slog.Logger
}

func NewService(
	repo store.BookingRepository,
	catalog store.ServiceCatalog,
	cal calendar.Sync,
	hours domain.BusinessHours,
	loc *time.Location,
	log *slog.Logger,
) *Service {
	if cal == nil {
		cal = calendar.Disabled{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		cal:     cal,
		hours:   hours,
		loc:     loc,
		log:     log.With(slog.String("component", "bookings")),
	}
}

// BookingDetail joins a booking with the catalog service snapshot it was
// validated against.
type BookingDetail struct {
	Booking domain.Booking
	Service domain.Service
}

type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	ServiceID     string
	StartTime     string
}

// UpdateInput fields left nil keep the booking's existing values.
type UpdateInput struct {
	CustomerName  *string
	CustomerPhone *string
	ServiceID     *string
	StartTime     *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (BookingDetail, error) {
	name, phone, err := validateCustomer(in.CustomerName, in.CustomerPhone)
	if err != nil {
		return BookingDetail{}, err
	}

	svc, err := s.resolveService(ctx, in.ServiceID)
	if err != nil {
		return BookingDetail{}, err
	}

	start, err := parseStartTime(in.StartTime)
	if err != nil {
		return BookingDetail{}, err
	}
	end, err := domain.ComputeEndTime(start, svc.DurationMinutes)
	if err != nil {
		return BookingDetail{}, err
	}
	if !s.hours.Contains(start, end, s.loc) {
		return BookingDetail{}, ErrOutsideBusinessHours
	}

	booking := domain.Booking{
		CustomerName:  name,
		CustomerPhone: phone,
		ServiceID:     svc.ID,
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		BufferMinutes: svc.BufferMinutes,
	}

	created, err := s.writeChecked(ctx, booking, uuid.Nil, func(ctx context.Context, tx store.BookingTx) (domain.Booking, error) {
		return tx.CreateBooking(ctx, booking)
	})
	if err != nil {
		return BookingDetail{}, err
	}

	created = s.mirrorCreate(ctx, created, svc)
	return BookingDetail{Booking: created, Service: svc}, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (BookingDetail, error) {
	if id == uuid.Nil {
		return BookingDetail{}, validationError("booking id is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return BookingDetail{}, ErrBookingNotFound
		}
		return BookingDetail{}, err
	}

	name := existing.CustomerName
	phone := existing.CustomerPhone
	if in.CustomerName != nil || in.CustomerPhone != nil {
		if in.CustomerName != nil {
			name = *in.CustomerName
		}
		if in.CustomerPhone != nil {
			phone = *in.CustomerPhone
		}
		name, phone, err = validateCustomer(name, phone)
		if err != nil {
			return BookingDetail{}, err
		}
	}

	serviceID := existing.ServiceID
	if in.ServiceID != nil {
		serviceID = *in.ServiceID
	}
	svc, err := s.resolveService(ctx, serviceID)
	if err != nil {
		return BookingDetail{}, err
	}

	start := existing.StartTime
	if in.StartTime != nil {
		start, err = parseStartTime(*in.StartTime)
		if err != nil {
			return BookingDetail{}, err
		}
	}
	// Re-validation always uses the current service snapshot; a stale
	// duration would reintroduce the conflicts the detector prevents.
	end, err := domain.ComputeEndTime(start, svc.DurationMinutes)
	if err != nil {
		return BookingDetail{}, err
	}
	if !s.hours.Contains(start, end, s.loc) {
		return BookingDetail{}, ErrOutsideBusinessHours
	}

	booking := domain.Booking{
		ID:            id,
		CustomerName:  name,
		CustomerPhone: phone,
		ServiceID:     svc.ID,
		StartTime:     start.UTC(),
		EndTime:       end.UTC(),
		BufferMinutes: svc.BufferMinutes,
	}

	updated, err := s.writeChecked(ctx, booking, id, func(ctx context.Context, tx store.BookingTx) (domain.Booking, error) {
		if _, err := tx.FindBooking(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Booking{}, ErrBookingNotFound
			}
			return domain.Booking{}, err
		}
		return tx.UpdateBooking(ctx, booking)
	})
	if err != nil {
		return BookingDetail{}, err
	}

	updated.ExternalEventRef = existing.ExternalEventRef
	updated = s.mirrorUpdate(ctx, updated, svc)
	return BookingDetail{Booking: updated, Service: svc}, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return validationError("booking id is required")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	err = s.repo.InDayTransaction(ctx, s.dayStart(existing.StartTime), func(ctx context.Context, tx store.BookingTx) error {
		return tx.DeleteBooking(ctx, existing.ID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}

	if existing.ExternalEventRef != "" {
		if err := s.cal.DeleteEvent(ctx, existing.ExternalEventRef); err != nil {
			s.logSyncFailure("delete_event", existing.ID, err)
		}
	}
	return nil
}

// ListForDate returns the bookings starting on the given shop-local date,
// ordered by start time, each joined with its service snapshot.
func (s *Service) ListForDate(ctx context.Context, date string) ([]BookingDetail, error) {
	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, date)
	}
	next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, s.loc)

	rows, err := s.repo.ListByDateRange(ctx, day, next)
	if err != nil {
		return nil, err
	}

	services := make(map[string]domain.Service, 4)
	out := make([]BookingDetail, 0, len(rows))
	for _, b := range rows {
		svc, ok := services[b.ServiceID]
		if !ok {
			svc, err = s.catalog.FindByID(ctx, b.ServiceID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return nil, err
				}
				s.log.Warn("service snapshot missing for booking",
					slog.String("booking_id", b.ID.String()),
					slog.String("service_id", b.ServiceID),
				)
				svc = domain.Service{ID: b.ServiceID}
			}
			services[b.ServiceID] = svc
		}
		out = append(out, BookingDetail{Booking: b, Service: svc})
	}
	return out, nil
}

// writeChecked runs the conflict check and the write inside one day
// transaction, so no other writer can slip a conflicting booking between
// the check and the commit.
func (s *Service) writeChecked(
	ctx context.Context,
	candidate domain.Booking,
	exclude uuid.UUID,
	write func(ctx context.Context, tx store.BookingTx) (domain.Booking, error),
) (domain.Booking, error) {
	day := s.dayStart(candidate.StartTime)
	next := time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, s.loc)

	var written domain.Booking
	err := s.repo.InDayTransaction(ctx, day, func(ctx context.Context, tx store.BookingTx) error {
		existing, err := tx.ListBookings(ctx, day, next)
		if err != nil {
			return err
		}
		if c := domain.FindConflict(candidate.StartTime, candidate.EndTime, candidate.BufferMinutes, existing, exclude); c != nil {
			return &ConflictError{BookingID: c.ID, StartTime: c.StartTime, EndTime: c.EndTime}
		}
		written, err = write(ctx, tx)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return written, nil
}

func (s *Service) mirrorCreate(ctx context.Context, b domain.Booking, svc domain.Service) domain.Booking {
	ref, err := s.cal.CreateEvent(ctx, eventFor(b, svc))
	if err != nil {
		s.logSyncFailure("create_event", b.ID, err)
		return b
	}
	if ref == "" {
		return b
	}
	if err := s.repo.SetExternalEventRef(ctx, b.ID, ref); err != nil {
		s.logSyncFailure("store_event_ref", b.ID, err)
		return b
	}
	b.ExternalEventRef = ref
	return b
}

func (s *Service) mirrorUpdate(ctx context.Context, b domain.Booking, svc domain.Service) domain.Booking {
	if b.ExternalEventRef == "" {
		// Never mirrored (or a previous sync failed): treat as a create.
		return s.mirrorCreate(ctx, b, svc)
	}
	if err := s.cal.UpdateEvent(ctx, b.ExternalEventRef, eventFor(b, svc)); err != nil {
		s.logSyncFailure("update_event", b.ID, err)
	}
	return b
}

func (s *Service) logSyncFailure(op string, bookingID uuid.UUID, err error) {
	s.log.Warn("calendar sync failed",
		slog.String("op", op),
		slog.String("booking_id", bookingID.String()),
		slog.Any("err", err),
	)
}

func (s *Service) resolveService(ctx context.Context, id string) (domain.Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Service{}, validationError("service_id is required")
	}
	svc, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Service{}, ErrServiceNotFound
		}
		return domain.Service{}, err
	}
	return svc, nil
}

func (s *Service) dayStart(t time.Time) time.Time {
	lt := t.In(s.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, s.loc)
}

func validateCustomer(name, phone string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", validationError("customer_name is required")
	}
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return "", "", validationError("customer_phone must be an E.164 number, e.g. +15551234567")
	}
	return name, phone, nil
}

func parseStartTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTimestamp, raw)
	}
	return t, nil
}

func eventFor(b domain.Booking, svc domain.Service) calendar.Event {
	return calendar.Event{
		BookingID:     b.ID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		ServiceName:   svc.Name,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
	}
}
