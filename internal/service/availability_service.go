package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/yourorg/chairtime/internal/availability"
	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/observability/metrics"
)

// AvailabilityService computes bookable slots from recurring schedules,
// ad-hoc blockings and existing active bookings. It is read-only and is not
// the source of the overlap guarantee; availability can go stale between
// query and booking attempt, and the booking writer is what enforces
// correctness at write time.
type AvailabilityService struct {
	catalog      domain.CatalogRepository
	schedules    domain.ScheduleRepository
	bookings     domain.BookingRepository
	slicer       availability.Slicer
	maxRangeDays int
	logger       *slog.Logger
}

// NewAvailabilityService creates an availability service. The slicer is the
// strategy chosen from configuration at startup.
func NewAvailabilityService(
	catalog domain.CatalogRepository,
	schedules domain.ScheduleRepository,
	bookings domain.BookingRepository,
	slicer availability.Slicer,
	maxRangeDays int,
	logger *slog.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 90
	}
	return &AvailabilityService{
		catalog:      catalog,
		schedules:    schedules,
		bookings:     bookings,
		slicer:       slicer,
		maxRangeDays: maxRangeDays,
		logger:       logger,
	}
}

// SlotQuery describes one availability request. Tenant must come from the
// tenant resolver; From and To bound the half-open instant range to scan.
type SlotQuery struct {
	Tenant    *domain.Tenant
	ServiceID string
	StaffID   string // optional; empty means all eligible staff
	From      time.Time
	To        time.Time
}

// ComputeSlots runs the pipeline: load schedules, merge windows, subtract
// blockings and active bookings, apply service buffers, slice into slots.
// Zero schedules yields an empty result, not an error.
func (s *AvailabilityService) ComputeSlots(ctx context.Context, q SlotQuery) ([]domain.Slot, error) {
	start := time.Now()
	slots, err := s.computeSlots(ctx, q)
	if err != nil {
		metrics.ObserveSlotQuery("error", time.Since(start))
		return nil, err
	}
	metrics.ObserveSlotQuery("ok", time.Since(start))
	return slots, nil
}

func (s *AvailabilityService) computeSlots(ctx context.Context, q SlotQuery) ([]domain.Slot, error) {
	if q.Tenant == nil || q.Tenant.ID == "" {
		return nil, domain.ErrNotFound
	}
	if q.To.Before(q.From) {
		return nil, domain.Invalid("date_range", "from must not be after to")
	}
	if q.To.Sub(q.From) > time.Duration(s.maxRangeDays)*24*time.Hour {
		return nil, domain.Invalid("date_range", "range too large")
	}

	svc, err := s.catalog.GetService(ctx, q.Tenant.ID, q.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, domain.ErrInactive
	}

	staffIDs, err := s.eligibleStaff(ctx, q.Tenant.ID, svc, q.StaffID)
	if err != nil {
		return nil, err
	}
	if len(staffIDs) == 0 {
		return []domain.Slot{}, nil
	}

	schedules, err := s.schedules.ListActiveSchedules(ctx, q.Tenant.ID, staffIDs)
	if err != nil {
		return nil, err
	}
	blockings, err := s.schedules.ListBlockings(ctx, q.Tenant.ID, staffIDs, q.From, q.To)
	if err != nil {
		return nil, err
	}

	byStaff := map[string][]*domain.Schedule{}
	for _, sched := range schedules {
		byStaff[sched.StaffID] = append(byStaff[sched.StaffID], sched)
	}
	busyByStaff := map[string][]availability.Window{}
	for _, b := range blockings {
		busyByStaff[b.StaffID] = append(busyByStaff[b.StaffID], availability.Window{Start: b.StartsAt, End: b.EndsAt})
	}

	loc := q.Tenant.Location()
	var slots []domain.Slot
	for _, staffID := range staffIDs {
		staffSchedules := byStaff[staffID]
		if len(staffSchedules) == 0 {
			continue
		}

		booked, err := s.bookings.ListActiveOverlapping(ctx, q.Tenant.ID, staffID, q.From, q.To)
		if err != nil {
			return nil, err
		}
		busy := busyByStaff[staffID]
		for _, b := range booked {
			busy = append(busy, availability.Window{Start: b.StartsAt, End: b.EndsAt})
		}

		windows := expandSchedules(staffSchedules, q.From, q.To, loc)
		windows = availability.Merge(windows)
		windows = availability.Subtract(windows, busy)
		windows = availability.Buffer(windows, svc.BufferBefore(), svc.BufferAfter(), svc.Duration())

		for _, w := range windows {
			for _, slot := range s.slicer.Slice(w, svc.Duration()) {
				slots = append(slots, domain.Slot{StaffID: staffID, Start: slot.Start, End: slot.End})
			}
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start.Equal(slots[j].Start) {
			return slots[i].StaffID < slots[j].StaffID
		}
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots, nil
}

// eligibleStaff resolves the staff set for a query, honoring the service
// allow-list. A requested staff member outside the allow-list yields an empty
// set rather than an error, matching the zero-schedules behavior.
func (s *AvailabilityService) eligibleStaff(ctx context.Context, tenantID string, svc *domain.Service, staffID string) ([]string, error) {
	if staffID != "" {
		st, err := s.catalog.GetStaff(ctx, tenantID, staffID)
		if err != nil {
			return nil, err
		}
		if !st.IsActive || !svc.AllowsStaff(st.ID) {
			return nil, nil
		}
		return []string{st.ID}, nil
	}

	all, err := s.catalog.ListActiveStaff(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, st := range all {
		if svc.AllowsStaff(st.ID) {
			out = append(out, st.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// expandSchedules materializes recurring weekly windows as concrete intervals
// for every day touching [from, to), clipped to the range. Times are built in
// the tenant's timezone so windows track local wall-clock across DST.
func expandSchedules(schedules []*domain.Schedule, from, to time.Time, loc *time.Location) []availability.Window {
	var windows []availability.Window
	day := time.Date(from.In(loc).Year(), from.In(loc).Month(), from.In(loc).Day(), 0, 0, 0, 0, loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, sched := range schedules {
			if sched.Weekday != day.Weekday() {
				continue
			}
			// time.Date, not day.Add: a fixed offset from midnight drifts by
			// an hour on DST-transition days.
			w := availability.Window{
				Start: time.Date(day.Year(), day.Month(), day.Day(), 0, sched.StartMinute, 0, 0, loc),
				End:   time.Date(day.Year(), day.Month(), day.Day(), 0, sched.EndMinute, 0, 0, loc),
			}
			if w.End.After(to) {
				w.End = to
			}
			if w.Start.Before(from) {
				w.Start = from
			}
			if !w.Empty() {
				windows = append(windows, w)
			}
		}
	}
	return windows
}
