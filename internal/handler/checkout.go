package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/chairtime/internal/service"
)

// CheckoutIntentRequest starts a checkout. A tenant_id field is deliberately
// absent: the tenant is derived server-side from the service.
type CheckoutIntentRequest struct {
	ServiceID     string    `json:"service_id"`
	StartsAt      time.Time `json:"starts_at"`
	StaffID       string    `json:"staff_id,omitempty"`
	CustomerID    string    `json:"customer_id,omitempty"`
	CustomerName  string    `json:"customer_name,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
}

// CheckoutIntentResponse is the wire shape of a created intent.
type CheckoutIntentResponse struct {
	PaymentIntentID string    `json:"payment_intent_id"`
	Status          string    `json:"status"`
	AmountCents     int64     `json:"amount"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// CheckoutIntentHandler serves POST /api/checkout/intent.
type CheckoutIntentHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutIntentHandler creates the intent handler
func NewCheckoutIntentHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutIntentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutIntentHandler{checkout: checkout, logger: logger}
}

// ServeHTTP handles intent creation
func (h *CheckoutIntentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CheckoutIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	pi, err := h.checkout.CreateIntent(r.Context(), service.CreateIntentInput{
		ServiceID:     req.ServiceID,
		ProposedStart: req.StartsAt,
		StaffID:       req.StaffID,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutIntentResponse{
		PaymentIntentID: pi.ID,
		Status:          string(pi.Status),
		AmountCents:     pi.AmountCents,
		ExpiresAt:       pi.ExpiresAt,
	})
}

// CheckoutConfirmRequest confirms a previously created intent.
type CheckoutConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

// CheckoutConfirmResponse is the wire shape of a confirmed booking.
type CheckoutConfirmResponse struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// CheckoutConfirmHandler serves POST /api/checkout/confirm.
type CheckoutConfirmHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutConfirmHandler creates the confirm handler
func NewCheckoutConfirmHandler(checkout *service.CheckoutService, logger *slog.Logger) *CheckoutConfirmHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutConfirmHandler{checkout: checkout, logger: logger}
}

// ServeHTTP handles intent confirmation
func (h *CheckoutConfirmHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CheckoutConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.PaymentIntentID == "" {
		badRequest(w, "payment_intent_id is required")
		return
	}

	booking, err := h.checkout.ConfirmIntent(r.Context(), req.PaymentIntentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutConfirmResponse{
		BookingID: booking.ID,
		Status:    string(booking.Status),
		StartsAt:  booking.StartsAt,
		EndsAt:    booking.EndsAt,
	})
}
