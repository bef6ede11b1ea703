package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
)

// CheckoutService is the payment intent gate. It derives the tenant from the
// service row — a client-supplied tenant id is never part of its inputs — and
// hands confirmed intents to the booking writer. Payment capture happens
// before the booking insert, so the transactional write never blocks on an
// external provider.
type CheckoutService struct {
	catalog  domain.CatalogRepository
	intents  domain.PaymentIntentRepository
	bookings domain.BookingRepository
	writer   *BookingService
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewCheckoutService creates a checkout service with the given intent TTL
func NewCheckoutService(
	catalog domain.CatalogRepository,
	intents domain.PaymentIntentRepository,
	bookings domain.BookingRepository,
	writer *BookingService,
	ttl time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CheckoutService{
		catalog:  catalog,
		intents:  intents,
		bookings: bookings,
		writer:   writer,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateIntentInput carries a checkout start request. There is deliberately
// no tenant field.
type CreateIntentInput struct {
	ServiceID     string
	ProposedStart time.Time
	StaffID       string // optional, auto-assigned at confirmation when empty
	CustomerID    string
	CustomerName  string
}

// CreateIntent validates the service is sellable and persists a
// requires_payment intent carrying the proposed booking parameters. No
// Booking row exists yet.
func (s *CheckoutService) CreateIntent(ctx context.Context, in CreateIntentInput) (*domain.PaymentIntent, error) {
	if in.ServiceID == "" {
		return nil, domain.Invalid("service_id", "required")
	}

	svc, err := s.catalog.GetServiceAnyTenant(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, domain.ErrInactive
	}
	if svc.PriceCents <= 0 {
		return nil, domain.Invalid("service_id", "service has no configured price")
	}
	if !in.ProposedStart.After(s.now()) {
		return nil, domain.Invalid("starts_at", "must be in the future")
	}

	if in.StaffID != "" {
		staff, err := s.catalog.GetStaff(ctx, svc.TenantID, in.StaffID)
		if err != nil {
			return nil, err
		}
		if !staff.IsActive {
			return nil, domain.ErrInactive
		}
		if !svc.AllowsStaff(staff.ID) {
			return nil, domain.Invalid("staff_id", "staff not allowed for this service")
		}
	}

	pi := &domain.PaymentIntent{
		TenantID:      svc.TenantID, // authoritative; never from client input
		ServiceID:     svc.ID,
		CustomerID:    in.CustomerID,
		CustomerName:  in.CustomerName,
		AmountCents:   svc.PriceCents,
		Status:        domain.IntentRequiresPayment,
		ProposedStart: in.ProposedStart,
		StaffID:       in.StaffID,
		ExpiresAt:     s.now().Add(s.ttl),
	}
	if err := s.intents.Create(ctx, pi); err != nil {
		return nil, err
	}

	s.logger.Info("payment intent created",
		slog.String("tenant_id", pi.TenantID),
		slog.String("intent_id", pi.ID),
		slog.Time("expires_at", pi.ExpiresAt),
	)
	return pi, nil
}

// ConfirmIntent promotes a paid intent to a booking. Confirming an
// already-paid intent is a no-op returning the existing booking, and
// concurrent confirmations of the same intent, which happens when the client
// confirm call races the provider webhook, all settle on the one booking. An
// intent past its TTL is cancelled and rejected with ErrExpired. An overlap
// with a foreign booking fails the intent and propagates ErrOverlap.
func (s *CheckoutService) ConfirmIntent(ctx context.Context, intentID string) (*domain.Booking, error) {
	if intentID == "" {
		return nil, domain.Invalid("payment_intent_id", "required")
	}

	pi, err := s.intents.GetByID(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if pi.Status == domain.IntentPaid {
		return s.bookings.GetByID(ctx, pi.TenantID, pi.BookingID)
	}
	if pi.Status != domain.IntentRequiresPayment {
		return nil, domain.ErrExpired
	}
	if pi.Expired(s.now()) {
		if err := s.intents.MarkTerminal(ctx, pi.ID, domain.IntentCancelled); err != nil {
			s.logger.Error("failed to cancel expired intent",
				slog.String("intent_id", pi.ID), slog.String("error", err.Error()))
		}
		return nil, domain.ErrExpired
	}

	staffID := pi.StaffID
	if staffID == "" {
		staffID, err = s.autoAssignStaff(ctx, pi)
		if err != nil {
			return nil, err
		}
	}

	booking, err := s.writer.CreateBooking(ctx, CreateBookingInput{
		TenantID:        pi.TenantID,
		StaffID:         staffID,
		ServiceID:       pi.ServiceID,
		CustomerID:      pi.CustomerID,
		CustomerName:    pi.CustomerName,
		StartsAt:        pi.ProposedStart,
		Status:          domain.StatusPaid,
		PaymentIntentID: pi.ID,
		Source:          SourceCheckout,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOverlap) {
			// The conflicting row may be this intent's own booking, written
			// by a confirmation racing ours between our status read and our
			// insert. That is a settlement, not a failure.
			if settled, gerr := s.bookings.GetByPaymentIntent(ctx, pi.TenantID, pi.ID); gerr == nil {
				if perr := s.intents.MarkPaid(ctx, pi.ID, settled.ID); perr != nil && !errors.Is(perr, domain.ErrExpired) {
					s.logger.Error("failed to mark intent paid",
						slog.String("intent_id", pi.ID), slog.String("error", perr.Error()))
				}
				return settled, nil
			}
			if terr := s.intents.MarkTerminal(ctx, pi.ID, domain.IntentFailed); terr != nil {
				s.logger.Error("failed to fail intent after overlap",
					slog.String("intent_id", pi.ID), slog.String("error", terr.Error()))
			}
			return nil, domain.ErrOverlap
		}
		return nil, err
	}

	if err := s.intents.MarkPaid(ctx, pi.ID, booking.ID); err != nil {
		// The booking is committed and must not be undone. A concurrent
		// confirmation recording the intent first is fine; anything else,
		// such as a racing sweep, is log-worthy.
		if cur, cerr := s.intents.GetByID(ctx, pi.ID); cerr != nil || cur.Status != domain.IntentPaid {
			s.logger.Error("failed to mark intent paid",
				slog.String("intent_id", pi.ID),
				slog.String("booking_id", booking.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return booking, nil
}

// autoAssignStaff picks the first active staff member eligible for the
// intent's service, by display name for determinism.
func (s *CheckoutService) autoAssignStaff(ctx context.Context, pi *domain.PaymentIntent) (string, error) {
	svc, err := s.catalog.GetService(ctx, pi.TenantID, pi.ServiceID)
	if err != nil {
		return "", err
	}
	all, err := s.catalog.ListActiveStaff(ctx, pi.TenantID)
	if err != nil {
		return "", err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].DisplayName < all[j].DisplayName })
	for _, st := range all {
		if svc.AllowsStaff(st.ID) {
			return st.ID, nil
		}
	}
	return "", domain.Invalid("staff_id", "no eligible staff available")
}
