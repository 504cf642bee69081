package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/bookings"
)

type fakeBookingsService struct {
	createFn func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error)
	updateFn func(ctx context.Context, id uuid.UUID, in bookings.UpdateInput) (bookings.BookingDetail, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
	listFn   func(ctx context.Context, date string) ([]bookings.BookingDetail, error)
}

func (f *fakeBookingsService) Create(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeBookingsService) Update(ctx context.Context, id uuid.UUID, in bookings.UpdateInput) (bookings.BookingDetail, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, id, in)
}

func (f *fakeBookingsService) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteFn == nil {
		panic("Delete not configured")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeBookingsService) ListForDate(ctx context.Context, date string) ([]bookings.BookingDetail, error) {
	if f.listFn == nil {
		panic("ListForDate not configured")
	}
	return f.listFn(ctx, date)
}

func newHandlerRouter(svc bookingsService) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewBookingsHandler(svc, log)
	return NewRouter(h, nil, log)
}

func sampleDetail() bookings.BookingDetail {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return bookings.BookingDetail{
		Booking: domain.Booking{
			ID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			CustomerName:  "Ada Lovelace",
			CustomerPhone: "+15551234567",
			ServiceID:     "S1",
			StartTime:     start,
			EndTime:       start.Add(30 * time.Minute),
			BufferMinutes: 10,
		},
		Service: domain.Service{ID: "S1", Name: "Haircut", DurationMinutes: 30, BufferMinutes: 10},
	}
}

func TestCreateBooking_Created(t *testing.T) {
	var gotInput bookings.CreateInput
	router := newHandlerRouter(&fakeBookingsService{
		createFn: func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
			gotInput = in
			return sampleDetail(), nil
		},
	})

	body := `{"customer_name":"Ada Lovelace","customer_phone":"+15551234567","service_id":"S1","start_time":"2026-03-02T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	if gotInput.ServiceID != "S1" || gotInput.StartTime != "2026-03-02T10:00:00Z" {
		t.Fatalf("service input = %+v", gotInput)
	}

	var resp bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EndTime != "2026-03-02T10:30:00Z" {
		t.Fatalf("end_time = %q, want %q", resp.EndTime, "2026-03-02T10:30:00Z")
	}
	if resp.Service.BufferMinutes != 10 {
		t.Fatalf("service.buffer_minutes = %d, want 10", resp.Service.BufferMinutes)
	}
}

func TestCreateBooking_RejectsMalformedPhone(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		createFn: func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
			t.Fatalf("service must not be called")
			return bookings.BookingDetail{}, nil
		},
	})

	body := `{"customer_name":"Ada","customer_phone":"555-123","service_id":"S1","start_time":"2026-03-02T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "VALIDATION_ERROR" {
		t.Fatalf("code = %q, want VALIDATION_ERROR", resp.Code)
	}
}

func TestCreateBooking_ConflictCarriesDetails(t *testing.T) {
	conflictID := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	router := newHandlerRouter(&fakeBookingsService{
		createFn: func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
			return bookings.BookingDetail{}, &bookings.ConflictError{
				BookingID: conflictID,
				StartTime: start,
				EndTime:   start.Add(30 * time.Minute),
			}
		},
	})

	body := `{"customer_name":"Ada","customer_phone":"+15551234567","service_id":"S1","start_time":"2026-03-02T10:35:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "BOOKING_CONFLICT" {
		t.Fatalf("code = %q, want BOOKING_CONFLICT", resp.Code)
	}
	if resp.Details["booking_id"] != conflictID.String() {
		t.Fatalf("details.booking_id = %v, want %s", resp.Details["booking_id"], conflictID)
	}
	if resp.Details["start_time"] != "2026-03-02T10:00:00Z" {
		t.Fatalf("details.start_time = %v", resp.Details["start_time"])
	}
}

func TestCreateBooking_OutsideBusinessHours(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		createFn: func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
			return bookings.BookingDetail{}, bookings.ErrOutsideBusinessHours
		},
	})

	body := `{"customer_name":"Ada","customer_phone":"+15551234567","service_id":"S1","start_time":"2026-03-02T17:50:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestCreateBooking_UnknownServiceIs404(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		createFn: func(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error) {
			return bookings.BookingDetail{}, bookings.ErrServiceNotFound
		},
	})

	body := `{"customer_name":"Ada","customer_phone":"+15551234567","service_id":"missing","start_time":"2026-03-02T10:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteBooking(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	router := newHandlerRouter(&fakeBookingsService{
		deleteFn: func(ctx context.Context, got uuid.UUID) error {
			if got != id {
				t.Fatalf("id = %s, want %s", got, id)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestDeleteBooking_NotFound(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			return bookings.ErrBookingNotFound
		},
	})

	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListBookings_RequiresDate(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		listFn: func(ctx context.Context, date string) ([]bookings.BookingDetail, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestListBookings_ReturnsDayBookings(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{
		listFn: func(ctx context.Context, date string) ([]bookings.BookingDetail, error) {
			if date != "2026-03-02" {
				t.Fatalf("date = %q, want 2026-03-02", date)
			}
			return []bookings.BookingDetail{sampleDetail()}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/bookings?date=2026-03-02", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Bookings []bookingResponse `json:"bookings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Bookings) != 1 {
		t.Fatalf("len = %d, want 1", len(resp.Bookings))
	}
	if resp.Bookings[0].Service.Name != "Haircut" {
		t.Fatalf("service.name = %q, want Haircut", resp.Bookings[0].Service.Name)
	}
}

func TestHealthz(t *testing.T) {
	router := newHandlerRouter(&fakeBookingsService{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
