package domain

import (
	"context"
	"time"
)

// IntentStatus values for the payment intent state machine:
// requires_payment -> {paid | failed | cancelled}.
type IntentStatus string

const (
	IntentRequiresPayment IntentStatus = "requires_payment"
	IntentPaid            IntentStatus = "paid"
	IntentFailed          IntentStatus = "failed"
	IntentCancelled       IntentStatus = "cancelled"
)

// PaymentIntent is a short-lived reservation of intent tied to proposed
// booking parameters. It is not yet a Booking row; confirmation promotes it
// through the booking writer.
type PaymentIntent struct {
	ID           string
	TenantID     string
	ServiceID    string
	CustomerID   string
	CustomerName string
	AmountCents  int64
	Status       IntentStatus
	// Proposed booking parameters carried as metadata until confirmation.
	ProposedStart time.Time
	StaffID       string // empty means auto-assign at confirmation
	BookingID     string // set once the intent is paid
	ExpiresAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the intent is past its TTL. Expiry is purely a
// timestamp comparison at read time; no background sweep is required for
// correctness.
func (pi *PaymentIntent) Expired(now time.Time) bool {
	return now.After(pi.ExpiresAt)
}

// PaymentIntentRepository defines data access for payment intents.
type PaymentIntentRepository interface {
	Create(ctx context.Context, pi *PaymentIntent) error
	GetByID(ctx context.Context, id string) (*PaymentIntent, error)
	// MarkPaid transitions requires_payment -> paid and records the booking id.
	MarkPaid(ctx context.Context, id, bookingID string) error
	// MarkTerminal transitions requires_payment -> failed or cancelled.
	MarkTerminal(ctx context.Context, id string, status IntentStatus) error
	// CancelExpired cancels all requires_payment intents past their TTL and
	// returns how many were swept. Hygiene only; reads always compare
	// timestamps first.
	CancelExpired(ctx context.Context, now time.Time) (int64, error)
}

// WebhookEventRepository records inbound payment-provider event ids before
// they are processed so redelivery never produces a second side effect.
type WebhookEventRepository interface {
	// Record returns false when the event id was already seen.
	Record(ctx context.Context, eventID string) (bool, error)
}
