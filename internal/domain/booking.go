package domain

import (
	"context"
	"time"
)

// BookingStatus values are wire-stable strings.
type BookingStatus string

const (
	StatusHold      BookingStatus = "hold"
	StatusPending   BookingStatus = "pending"
	StatusPaid      BookingStatus = "paid"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// ActiveStatuses is the status subset that occupies time. Only these
// participate in the overlap invariant; cancelled/no_show/completed bookings
// are inert and never block new ones.
var ActiveStatuses = []BookingStatus{StatusHold, StatusPending, StatusPaid, StatusConfirmed}

// Active reports whether the status participates in the overlap invariant.
func (s BookingStatus) Active() bool {
	switch s {
	case StatusHold, StatusPending, StatusPaid, StatusConfirmed:
		return true
	}
	return false
}

// Valid reports whether the status is a known wire value.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusHold, StatusPending, StatusPaid, StatusConfirmed,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// legalTransitions is the staff-facing status transition table. Bookings are
// soft-retired via cancelled/no_show, never deleted.
var legalTransitions = map[BookingStatus][]BookingStatus{
	StatusHold:      {StatusPending, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusPaid:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition reports whether a status change is legal.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Booking is a reserved time range for one staff member within one tenant.
type Booking struct {
	ID              string
	TenantID        string
	StaffID         string
	ServiceID       string
	CustomerID      string
	CustomerName    string
	StartsAt        time.Time
	EndsAt          time.Time
	Status          BookingStatus
	PaymentIntentID string // empty for manual bookings
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Overlaps reports whether the booking intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartsAt.Before(end) && start.Before(b.EndsAt)
}

// Slot is a candidate bookable window of exactly a service's duration.
type Slot struct {
	StaffID string    `json:"staff_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// BookingRepository defines data access for bookings.
//
// Create must be atomic with respect to the overlap invariant: two concurrent
// inserts of overlapping ranges for the same (tenant, staff) can never both
// succeed, and the loser gets ErrOverlap. The Postgres implementation delegates
// this to an exclusion constraint; no application lock is involved.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, tenantID, id string) (*Booking, error)
	GetByPaymentIntent(ctx context.Context, tenantID, intentID string) (*Booking, error)
	ListActiveOverlapping(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*Booking, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status BookingStatus) (*Booking, error)
}
