package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/service"
)

// AvailabilityResponse is the wire shape of a slot query.
type AvailabilityResponse struct {
	Slots    []domain.Slot `json:"slots"`
	Count    int           `json:"count"`
	Timezone string        `json:"timezone"`
}

// AvailabilityHandler serves GET /api/availability.
type AvailabilityHandler struct {
	resolver     *service.TenantResolver
	availability *service.AvailabilityService
	maxRangeDays int
	logger       *slog.Logger
}

// NewAvailabilityHandler creates an availability handler
func NewAvailabilityHandler(resolver *service.TenantResolver, availability *service.AvailabilityService, maxRangeDays int, logger *slog.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 90
	}
	return &AvailabilityHandler{resolver: resolver, availability: availability, maxRangeDays: maxRangeDays, logger: logger}
}

// ServeHTTP handles the availability query
func (h *AvailabilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantParam := q.Get("tenant")
	serviceID := q.Get("service_id")
	if tenantParam == "" {
		badRequest(w, "tenant is required")
		return
	}
	if serviceID == "" {
		badRequest(w, "service_id is required")
		return
	}

	tenant, err := h.resolver.Resolve(r.Context(), tenantParam)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	loc := tenant.Location()

	daysAhead := 7
	if raw := q.Get("days_ahead"); raw != "" {
		daysAhead, err = strconv.Atoi(raw)
		if err != nil || daysAhead < 1 {
			badRequest(w, "days_ahead must be a positive integer")
			return
		}
	}
	if daysAhead > h.maxRangeDays {
		badRequest(w, "days_ahead exceeds the allowed range")
		return
	}

	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if raw := q.Get("date"); raw != "" {
		parsed, perr := time.ParseInLocation("2006-01-02", raw, loc)
		if perr != nil {
			badRequest(w, "date must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	to := from.AddDate(0, 0, daysAhead)

	// Same-day queries scan from now rather than local midnight, so the read
	// surface never offers a start the writers would reject as past.
	if from.Before(now) {
		from = now
	}
	if !to.After(from) {
		writeJSON(w, http.StatusOK, AvailabilityResponse{Slots: []domain.Slot{}, Timezone: tenant.Timezone})
		return
	}

	slots, err := h.availability.ComputeSlots(r.Context(), service.SlotQuery{
		Tenant:    tenant,
		ServiceID: serviceID,
		StaffID:   q.Get("staff_id"),
		From:      from,
		To:        to,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if slots == nil {
		slots = []domain.Slot{}
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Slots:    slots,
		Count:    len(slots),
		Timezone: tenant.Timezone,
	})
}
