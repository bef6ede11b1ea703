package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/notification"
	"github.com/yourorg/chairtime/internal/observability/metrics"
)

// BookingSource identifies who initiated a booking; it drives which
// validations apply (customers may not book into the past, staff recording a
// walk-in may).
type BookingSource string

const (
	SourceCustomer BookingSource = "customer"
	SourceStaff    BookingSource = "staff"
	SourceCheckout BookingSource = "checkout"
	SourceForce    BookingSource = "force"
)

// CreateBookingInput carries one booking attempt.
type CreateBookingInput struct {
	TenantID        string
	StaffID         string
	ServiceID       string
	CustomerID      string
	CustomerName    string
	StartsAt        time.Time
	Status          domain.BookingStatus // zero value defaults to pending
	PaymentIntentID string
	Source          BookingSource
}

// BookingService is the booking writer. Validation happens up front; the
// overlap decision itself is a single atomic insert against the persistence
// layer, so concurrent callers racing for one slot resolve to exactly one
// success and deterministic ErrOverlap for the rest. Overlap is never retried
// here: it is a business outcome for the caller to handle.
type BookingService struct {
	bookings domain.BookingRepository
	catalog  domain.CatalogRepository
	notifier notification.Dispatcher
	logger   *slog.Logger
	now      func() time.Time
}

// NewBookingService creates a booking writer
func NewBookingService(
	bookings domain.BookingRepository,
	catalog domain.CatalogRepository,
	notifier notification.Dispatcher,
	logger *slog.Logger,
) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		bookings: bookings,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateBooking validates and atomically persists a booking. Returns
// domain.ErrOverlap when the slot is already taken.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	if in.TenantID == "" {
		return nil, domain.ErrNotFound
	}
	if in.StaffID == "" {
		return nil, domain.Invalid("staff_id", "required")
	}
	if in.ServiceID == "" {
		return nil, domain.Invalid("service_id", "required")
	}
	if in.StartsAt.IsZero() {
		return nil, domain.Invalid("starts_at", "required")
	}

	svc, err := s.catalog.GetService(ctx, in.TenantID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, domain.ErrInactive
	}

	staff, err := s.catalog.GetStaff(ctx, in.TenantID, in.StaffID)
	if err != nil {
		return nil, err
	}
	if !staff.IsActive {
		return nil, domain.ErrInactive
	}
	if !svc.AllowsStaff(staff.ID) {
		return nil, domain.Invalid("staff_id", "staff not allowed for this service")
	}

	if in.Source == SourceCustomer && !in.StartsAt.After(s.now()) {
		return nil, domain.Invalid("starts_at", "must be in the future")
	}

	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() || !status.Active() {
		return nil, domain.Invalid("status", fmt.Sprintf("cannot create booking in status %q", status))
	}

	booking := &domain.Booking{
		TenantID:        in.TenantID,
		StaffID:         in.StaffID,
		ServiceID:       in.ServiceID,
		CustomerID:      in.CustomerID,
		CustomerName:    in.CustomerName,
		StartsAt:        in.StartsAt,
		EndsAt:          in.StartsAt.Add(svc.Duration()),
		Status:          status,
		PaymentIntentID: in.PaymentIntentID,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrOverlap) {
			metrics.ObserveBookingAttempt("overlap")
			return nil, domain.ErrOverlap
		}
		metrics.ObserveBookingAttempt("error")
		return nil, err
	}
	metrics.ObserveBookingAttempt("created")

	s.logger.Info("booking created",
		slog.String("tenant_id", booking.TenantID),
		slog.String("booking_id", booking.ID),
		slog.String("staff_id", booking.StaffID),
		slog.Time("starts_at", booking.StartsAt),
		slog.String("source", string(in.Source)),
	)

	s.notifyAsync(notification.Event{
		Type:         notification.BookingCreated,
		TenantID:     booking.TenantID,
		BookingID:    booking.ID,
		StaffID:      booking.StaffID,
		StartsAt:     booking.StartsAt,
		CustomerName: booking.CustomerName,
	})

	return booking, nil
}

// TransitionStatus applies a staff-driven status change according to the
// legal transition table. Cancelling frees the time range immediately because
// the exclusion constraint only covers active statuses.
func (s *BookingService) TransitionStatus(ctx context.Context, tenantID, bookingID string, to domain.BookingStatus) (*domain.Booking, error) {
	if tenantID == "" {
		return nil, domain.ErrNotFound
	}
	if !to.Valid() {
		return nil, domain.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}

	current, err := s.bookings.GetByID(ctx, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, to) {
		return nil, domain.Invalid("status", fmt.Sprintf("cannot transition %s -> %s", current.Status, to))
	}

	updated, err := s.bookings.UpdateStatus(ctx, tenantID, bookingID, to)
	if err != nil {
		return nil, err
	}

	if to == domain.StatusCancelled {
		s.notifyAsync(notification.Event{
			Type:         notification.BookingCancelled,
			TenantID:     updated.TenantID,
			BookingID:    updated.ID,
			StaffID:      updated.StaffID,
			StartsAt:     updated.StartsAt,
			CustomerName: updated.CustomerName,
		})
	}
	return updated, nil
}

// notifyAsync hands an event to the dispatcher without tying it to the
// request. Dispatch failures are the dispatcher's problem; a committed
// booking is never rolled back over a notification.
func (s *BookingService) notifyAsync(ev notification.Event) {
	if s.notifier == nil {
		return
	}
	go s.notifier.Dispatch(context.Background(), ev)
}
