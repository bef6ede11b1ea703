package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/security/middleware"
	"github.com/yourorg/chairtime/internal/service"
)

// BookingResponse is the wire shape of a booking on staff surfaces.
type BookingResponse struct {
	ID           string    `json:"id"`
	StaffID      string    `json:"staff_id"`
	ServiceID    string    `json:"service_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Status       string    `json:"status"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		StaffID:      b.StaffID,
		ServiceID:    b.ServiceID,
		CustomerName: b.CustomerName,
		StartsAt:     b.StartsAt,
		EndsAt:       b.EndsAt,
		Status:       string(b.Status),
	}
}

// CreateBookingRequest is a staff-side manual booking. The tenant always
// comes from the token claims, never from the body.
type CreateBookingRequest struct {
	StaffID      string    `json:"staff_id"`
	ServiceID    string    `json:"service_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerName string    `json:"customer_name,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
}

// BookingsHandler serves POST /api/bookings (manual staff bookings).
type BookingsHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingsHandler creates the manual booking handler
func NewBookingsHandler(bookings *service.BookingService, logger *slog.Logger) *BookingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingsHandler{bookings: bookings, logger: logger}
}

// ServeHTTP handles manual booking creation
func (h *BookingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), service.CreateBookingInput{
		TenantID:     claims.TenantID,
		StaffID:      req.StaffID,
		ServiceID:    req.ServiceID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		StartsAt:     req.StartsAt,
		Source:       service.SourceStaff,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// ConflictsResponse lists collisions and the resolution choices.
type ConflictsResponse struct {
	Conflicts   []service.Conflict   `json:"conflicts"`
	Resolutions []service.Resolution `json:"resolutions"`
}

// ConflictsHandler serves GET /api/bookings/conflicts.
type ConflictsHandler struct {
	conflicts *service.ConflictService
	logger    *slog.Logger
}

// NewConflictsHandler creates the conflict pre-check handler
func NewConflictsHandler(conflicts *service.ConflictService, logger *slog.Logger) *ConflictsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictsHandler{conflicts: conflicts, logger: logger}
}

// ServeHTTP handles the conflict pre-check
func (h *ConflictsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	staffID := q.Get("staff_id")
	startsAt, err1 := time.Parse(time.RFC3339, q.Get("starts_at"))
	endsAt, err2 := time.Parse(time.RFC3339, q.Get("ends_at"))
	if staffID == "" || err1 != nil || err2 != nil {
		badRequest(w, "staff_id, starts_at and ends_at are required (RFC3339)")
		return
	}

	conflicts, err := h.conflicts.Check(r.Context(), claims.TenantID, staffID, startsAt, endsAt)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if conflicts == nil {
		conflicts = []service.Conflict{}
	}

	writeJSON(w, http.StatusOK, ConflictsResponse{
		Conflicts:   conflicts,
		Resolutions: service.Resolutions(),
	})
}

// ForceBookingHandler serves POST /api/bookings/force. Requires an elevated
// role; the exclusion constraint still applies to the write.
type ForceBookingHandler struct {
	conflicts *service.ConflictService
	logger    *slog.Logger
}

// NewForceBookingHandler creates the force-create handler
func NewForceBookingHandler(conflicts *service.ConflictService, logger *slog.Logger) *ForceBookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForceBookingHandler{conflicts: conflicts, logger: logger}
}

// ServeHTTP handles force-create
func (h *ForceBookingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	booking, err := h.conflicts.Force(r.Context(), claims.Role, service.CreateBookingInput{
		TenantID:     claims.TenantID,
		StaffID:      req.StaffID,
		ServiceID:    req.ServiceID,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		StartsAt:     req.StartsAt,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// StatusRequest is a staff-driven booking status transition.
type StatusRequest struct {
	Status string `json:"status"`
}

// BookingStatusHandler serves PATCH /api/bookings/{id}/status.
type BookingStatusHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingStatusHandler creates the status transition handler
func NewBookingStatusHandler(bookings *service.BookingService, logger *slog.Logger) *BookingStatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingStatusHandler{bookings: bookings, logger: logger}
}

// ServeHTTP handles the status transition
func (h *BookingStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	bookingID := r.PathValue("id")
	if bookingID == "" {
		badRequest(w, "booking id is required")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	booking, err := h.bookings.TransitionStatus(r.Context(), claims.TenantID, bookingID, domain.BookingStatus(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}
