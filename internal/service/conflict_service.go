package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
)

// ConflictType distinguishes what a proposed booking collides with.
type ConflictType string

const (
	ConflictBooking  ConflictType = "booking"
	ConflictBlocking ConflictType = "blocking"
)

// Conflict is one collision with human-relevant context for the UI.
type Conflict struct {
	Type     ConflictType `json:"type"`
	RefID    string       `json:"ref_id"`
	StartsAt time.Time    `json:"starts_at"`
	EndsAt   time.Time    `json:"ends_at"`
	Detail   string       `json:"detail"` // customer name or blocking reason
}

// Resolution choices offered alongside a conflict list. Only force is
// executed by this service; the rest are client-side decisions.
type Resolution string

const (
	ResolutionRetargetTime  Resolution = "retarget_time"
	ResolutionRetargetStaff Resolution = "retarget_staff"
	ResolutionForce         Resolution = "force"
	ResolutionAbort         Resolution = "abort"
)

// Resolutions lists the choices in presentation order.
func Resolutions() []Resolution {
	return []Resolution{ResolutionRetargetTime, ResolutionRetargetStaff, ResolutionForce, ResolutionAbort}
}

// ConflictService is decision support for colliding bookings. Check is a soft
// pre-check only — the hard guarantee stays with the exclusion constraint, so
// a "force" can still lose to a racing concurrent booking.
type ConflictService struct {
	bookings  domain.BookingRepository
	schedules domain.ScheduleRepository
	writer    *BookingService
	logger    *slog.Logger
}

// NewConflictService creates a conflict resolver
func NewConflictService(
	bookings domain.BookingRepository,
	schedules domain.ScheduleRepository,
	writer *BookingService,
	logger *slog.Logger,
) *ConflictService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConflictService{bookings: bookings, schedules: schedules, writer: writer, logger: logger}
}

// Check enumerates active bookings and blockings colliding with the proposed
// range for one staff member.
func (s *ConflictService) Check(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]Conflict, error) {
	if tenantID == "" {
		return nil, domain.ErrNotFound
	}
	if staffID == "" {
		return nil, domain.Invalid("staff_id", "required")
	}
	if !from.Before(to) {
		return nil, domain.Invalid("ends_at", "must be after starts_at")
	}

	bookings, err := s.bookings.ListActiveOverlapping(ctx, tenantID, staffID, from, to)
	if err != nil {
		return nil, err
	}
	blockings, err := s.schedules.ListBlockings(ctx, tenantID, []string{staffID}, from, to)
	if err != nil {
		return nil, err
	}

	conflicts := make([]Conflict, 0, len(bookings)+len(blockings))
	for _, b := range bookings {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictBooking,
			RefID:    b.ID,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
			Detail:   b.CustomerName,
		})
	}
	for _, b := range blockings {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictBlocking,
			RefID:    b.ID,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
			Detail:   b.Reason,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].StartsAt.Before(conflicts[j].StartsAt) })
	return conflicts, nil
}

// Force creates a booking past the soft pre-check for elevated roles. It is a
// UX convenience, never a consistency bypass: the write is still subject to
// the exclusion constraint and can come back with ErrOverlap.
func (s *ConflictService) Force(ctx context.Context, role string, in CreateBookingInput) (*domain.Booking, error) {
	if role != "admin" && role != "manager" {
		return nil, domain.ErrForbidden
	}
	in.Source = SourceForce
	s.logger.Info("force booking attempted",
		slog.String("tenant_id", in.TenantID),
		slog.String("staff_id", in.StaffID),
		slog.String("role", role),
	)
	return s.writer.CreateBooking(ctx, in)
}
