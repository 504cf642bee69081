package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/bookings"
	"barberbook/backend/internal/store"
)

type bookingsService interface {
	Create(ctx context.Context, in bookings.CreateInput) (bookings.BookingDetail, error)
	Update(ctx context.Context, id uuid.UUID, in bookings.UpdateInput) (bookings.BookingDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForDate(ctx context.Context, date string) ([]bookings.BookingDetail, error)
}

type BookingsHandler struct {
	svc      bookingsService
	validate *validator.Validate
	log      *slog.Logger
}

func NewBookingsHandler(svc bookingsService, log *slog.Logger) *BookingsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BookingsHandler{
		svc:      svc,
		validate: validator.New(),
		log:      log.With(slog.String("component", "http.bookings")),
	}
}

func (h *BookingsHandler) Register(r *httprouter.Router) {
	r.POST("/v1/bookings", h.Create)
	r.GET("/v1/bookings", h.ListForDate)
	r.PATCH("/v1/bookings/:id", h.Update)
	r.DELETE("/v1/bookings/:id", h.Delete)
}

type createBookingRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerPhone string `json:"customer_phone" validate:"required,e164"`
	ServiceID     string `json:"service_id" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
}

type updateBookingRequest struct {
	CustomerName  *string `json:"customer_name" validate:"omitempty,min=1"`
	CustomerPhone *string `json:"customer_phone" validate:"omitempty,e164"`
	ServiceID     *string `json:"service_id" validate:"omitempty,min=1"`
	StartTime     *string `json:"start_time" validate:"omitempty,min=1"`
}

type serviceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	BufferMinutes   int    `json:"buffer_minutes"`
}

type bookingResponse struct {
	ID               string          `json:"id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	ServiceID        string          `json:"service_id"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	ExternalEventRef string          `json:"external_event_ref,omitempty"`
	Service          serviceResponse `json:"service"`
}

func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.log.With(slog.String("handler", "Create"))

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, log, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, log, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err), nil)
		return
	}

	detail, err := h.svc.Create(r.Context(), bookings.CreateInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ServiceID:     req.ServiceID,
		StartTime:     req.StartTime,
	})
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	log.Info("booking created",
		slog.String("booking_id", detail.Booking.ID.String()),
		slog.String("service_id", detail.Service.ID),
		slog.Time("start_time", detail.Booking.StartTime),
	)
	writeJSON(w, log, http.StatusCreated, toBookingResponse(detail))
}

func (h *BookingsHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	log := h.log.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, "BAD_REQUEST", "invalid booking id", nil)
		return
	}

	var req updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, log, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, log, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err), nil)
		return
	}

	detail, err := h.svc.Update(r.Context(), id, bookings.UpdateInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ServiceID:     req.ServiceID,
		StartTime:     req.StartTime,
	})
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	log.Info("booking updated",
		slog.String("booking_id", detail.Booking.ID.String()),
		slog.Time("start_time", detail.Booking.StartTime),
	)
	writeJSON(w, log, http.StatusOK, toBookingResponse(detail))
}

func (h *BookingsHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	log := h.log.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, "BAD_REQUEST", "invalid booking id", nil)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	log.Info("booking deleted", slog.String("booking_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingsHandler) ListForDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.log.With(slog.String("handler", "ListForDate"))

	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, log, http.StatusBadRequest, "BAD_REQUEST", "date query parameter is required (YYYY-MM-DD)", nil)
		return
	}

	details, err := h.svc.ListForDate(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, log, err)
		return
	}

	out := make([]bookingResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toBookingResponse(d))
	}
	writeJSON(w, log, http.StatusOK, map[string]any{"bookings": out})
}

// writeServiceError maps the scheduler's error taxonomy onto HTTP.
// Validation failures carry enough detail to correct the request;
// anything unexpected becomes a generic 500.
func (h *BookingsHandler) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *bookings.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, log, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Error(), nil)
		return
	}
	if errors.Is(err, domain.ErrInvalidTimestamp) {
		writeError(w, log, http.StatusBadRequest, "INVALID_TIMESTAMP", "start_time must be an RFC 3339 timestamp", nil)
		return
	}
	if errors.Is(err, domain.ErrInvalidDuration) {
		writeError(w, log, http.StatusBadRequest, "INVALID_DURATION", "service duration must be at least one minute", nil)
		return
	}
	if errors.Is(err, bookings.ErrOutsideBusinessHours) {
		writeError(w, log, http.StatusUnprocessableEntity, "OUTSIDE_BUSINESS_HOURS", "requested time is outside business hours", nil)
		return
	}
	var cErr *bookings.ConflictError
	if errors.As(err, &cErr) {
		writeError(w, log, http.StatusConflict, "BOOKING_CONFLICT", "requested time conflicts with an existing booking", map[string]any{
			"booking_id": cErr.BookingID.String(),
			"start_time": cErr.StartTime.Format(time.RFC3339),
			"end_time":   cErr.EndTime.Format(time.RFC3339),
		})
		return
	}
	if errors.Is(err, store.ErrConflict) {
		writeError(w, log, http.StatusConflict, "BOOKING_CONFLICT", "requested time conflicts with an existing booking", nil)
		return
	}
	if errors.Is(err, bookings.ErrServiceNotFound) {
		writeError(w, log, http.StatusNotFound, "SERVICE_NOT_FOUND", "service not found", nil)
		return
	}
	if errors.Is(err, bookings.ErrBookingNotFound) {
		writeError(w, log, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found", nil)
		return
	}

	log.Error("booking operation failed", slog.Any("err", err))
	writeError(w, log, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "e164":
			return fe.Field() + " must be an E.164 phone number, e.g. +15551234567"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "invalid request"
}

func toBookingResponse(d bookings.BookingDetail) bookingResponse {
	return bookingResponse{
		ID:               d.Booking.ID.String(),
		CustomerName:     d.Booking.CustomerName,
		CustomerPhone:    d.Booking.CustomerPhone,
		ServiceID:        d.Booking.ServiceID,
		StartTime:        d.Booking.StartTime.Format(time.RFC3339),
		EndTime:          d.Booking.EndTime.Format(time.RFC3339),
		ExternalEventRef: d.Booking.ExternalEventRef,
		Service: serviceResponse{
			ID:              d.Service.ID,
			Name:            d.Service.Name,
			DurationMinutes: d.Service.DurationMinutes,
			BufferMinutes:   d.Service.BufferMinutes,
		},
	}
}
