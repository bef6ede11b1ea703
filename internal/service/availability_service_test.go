package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/chairtime/internal/availability"
	"github.com/yourorg/chairtime/internal/domain"
)

func newAvailabilityService(f *fixture, slicer availability.Slicer) *AvailabilityService {
	return NewAvailabilityService(f.store.Catalog(), f.store.Schedules(), f.store.Bookings(), slicer, 90, nil)
}

// one tenant-local day as a half-open range
func dayRange(h int) (time.Time, time.Time) {
	from := time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, h)
}

func TestComputeSlotsFullDay(t *testing.T) {
	f := newFixture()
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)

	slots, err := svc.ComputeSlots(context.Background(), SlotQuery{
		Tenant: f.tenant, ServiceID: f.haircut.ID, StaffID: f.alex.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// 09:00-17:00 day, 30-minute aligned slots
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
	if !slots[0].Start.Equal(future(9, 0)) || !slots[0].End.Equal(future(9, 30)) {
		t.Errorf("first slot: got %v-%v", slots[0].Start, slots[0].End)
	}
	if !slots[15].End.Equal(future(17, 0)) {
		t.Errorf("last slot end: got %v", slots[15].End)
	}
}

func TestComputeSlotsSubtractsBlockingsAndBookings(t *testing.T) {
	f := newFixture()
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)
	ctx := context.Background()

	f.store.AddBlocking(&domain.Blocking{
		TenantID: f.tenant.ID, StaffID: f.alex.ID,
		Type: domain.BlockingTypeBlock, Reason: "lunch",
		StartsAt: future(12, 0), EndsAt: future(13, 0),
	})
	writer := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	if _, err := writer.CreateBooking(ctx, CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(9, 0), Source: SourceStaff,
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	slots, err := svc.ComputeSlots(ctx, SlotQuery{
		Tenant: f.tenant, ServiceID: f.haircut.ID, StaffID: f.alex.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// 16 base slots minus two for lunch and one for the booking
	if len(slots) != 13 {
		t.Fatalf("expected 13 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Start.Before(future(9, 30)) {
			t.Errorf("slot over the booked range: %v", s.Start)
		}
		if s.Start.Before(future(13, 0)) && s.End.After(future(12, 0)) {
			t.Errorf("slot over the blocking: %v-%v", s.Start, s.End)
		}
	}
}

func TestComputeSlotsAppliesBuffers(t *testing.T) {
	f := newFixture()
	buffered := f.store.AddService(&domain.Service{
		TenantID: f.tenant.ID, Name: "Massage", DurationMinutes: 60,
		BufferBeforeMinutes: 15, BufferAfterMinutes: 15,
		PriceCents: 8000, IsActive: true,
	})
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)

	slots, err := svc.ComputeSlots(context.Background(), SlotQuery{
		Tenant: f.tenant, ServiceID: buffered.ID, StaffID: f.alex.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if !slots[0].Start.Equal(future(9, 15)) {
		t.Errorf("expected first slot at 09:15, got %v", slots[0].Start)
	}
	last := slots[len(slots)-1]
	if last.End.After(future(16, 45)) {
		t.Errorf("slot past the post-buffer bound: %v", last.End)
	}
}

func TestComputeSlotsAllStaffSorted(t *testing.T) {
	f := newFixture()
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)

	slots, err := svc.ComputeSlots(context.Background(), SlotQuery{
		Tenant: f.tenant, ServiceID: f.haircut.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// both staff contribute a full day each
	if len(slots) != 32 {
		t.Fatalf("expected 32 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		prev, cur := slots[i-1], slots[i]
		if cur.Start.Before(prev.Start) {
			t.Fatalf("slots out of order at %d", i)
		}
		if cur.Start.Equal(prev.Start) && cur.StaffID < prev.StaffID {
			t.Fatalf("staff tiebreak out of order at %d", i)
		}
	}
}

func TestComputeSlotsDisallowedStaffEmpty(t *testing.T) {
	f := newFixture()
	limited := f.store.AddService(&domain.Service{
		TenantID: f.tenant.ID, Name: "Coloring", DurationMinutes: 60,
		PriceCents: 9000, IsActive: true, StaffOnlyIDs: []string{f.robin.ID},
	})
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)

	slots, err := svc.ComputeSlots(context.Background(), SlotQuery{
		Tenant: f.tenant, ServiceID: limited.ID, StaffID: f.alex.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots for disallowed staff, got %d", len(slots))
	}
}

func TestComputeSlotsGuards(t *testing.T) {
	f := newFixture()
	svc := newAvailabilityService(f, availability.AlignedSlicer{})
	from, to := dayRange(1)
	ctx := context.Background()

	if _, err := svc.ComputeSlots(ctx, SlotQuery{ServiceID: f.haircut.ID, From: from, To: to}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound without tenant, got %v", err)
	}

	var verr *domain.ValidationError
	if _, err := svc.ComputeSlots(ctx, SlotQuery{
		Tenant: f.tenant, ServiceID: f.haircut.ID, From: from, To: from.AddDate(0, 0, 120),
	}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for oversized range, got %v", err)
	}

	if _, err := svc.ComputeSlots(ctx, SlotQuery{
		Tenant: f.tenant, ServiceID: f.haircut.ID, From: to, To: from,
	}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for inverted range, got %v", err)
	}

	inactive := f.store.AddService(&domain.Service{
		TenantID: f.tenant.ID, Name: "Retired", DurationMinutes: 30, IsActive: false,
	})
	if _, err := svc.ComputeSlots(ctx, SlotQuery{
		Tenant: f.tenant, ServiceID: inactive.ID, From: from, To: to,
	}); !errors.Is(err, domain.ErrInactive) {
		t.Errorf("expected ErrInactive, got %v", err)
	}
}

func TestComputeSlotsSteppedMode(t *testing.T) {
	f := newFixture()
	long := f.store.AddService(&domain.Service{
		TenantID: f.tenant.ID, Name: "Treatment", DurationMinutes: 45,
		PriceCents: 6000, IsActive: true,
	})
	svc := newAvailabilityService(f, availability.SteppedSlicer{Step: 15 * time.Minute})
	from, to := dayRange(1)

	slots, err := svc.ComputeSlots(context.Background(), SlotQuery{
		Tenant: f.tenant, ServiceID: long.ID, StaffID: f.alex.ID, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	// 480-minute day, 45-minute service: starts 09:00 through 16:15 every 15m
	if len(slots) != 30 {
		t.Fatalf("expected 30 slots, got %d", len(slots))
	}
	if !slots[1].Start.Equal(future(9, 15)) {
		t.Errorf("expected second start 09:15, got %v", slots[1].Start)
	}
}

func TestExpandSchedulesTracksWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}
	scheds := []*domain.Schedule{
		{StaffID: "s1", Weekday: time.Sunday, StartMinute: 9 * 60, EndMinute: 17 * 60, IsActive: true},
	}

	cases := []struct {
		name      string
		day       time.Time
		wantStart time.Time
	}{
		// clocks spring forward at 02:00; 09:00 EDT is 13:00 UTC
		{"spring forward", time.Date(2025, 3, 9, 0, 0, 0, 0, loc),
			time.Date(2025, 3, 9, 13, 0, 0, 0, time.UTC)},
		// clocks fall back at 02:00; 09:00 EST is 14:00 UTC
		{"fall back", time.Date(2025, 11, 2, 0, 0, 0, 0, loc),
			time.Date(2025, 11, 2, 14, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		windows := expandSchedules(scheds, tc.day, tc.day.AddDate(0, 0, 1), loc)
		if len(windows) != 1 {
			t.Fatalf("%s: expected 1 window, got %d", tc.name, len(windows))
		}
		if h := windows[0].Start.In(loc).Hour(); h != 9 {
			t.Errorf("%s: start wall-clock hour = %d, want 9", tc.name, h)
		}
		if !windows[0].Start.Equal(tc.wantStart) {
			t.Errorf("%s: start = %v, want %v", tc.name, windows[0].Start.UTC(), tc.wantStart)
		}
		if got := windows[0].End.Sub(windows[0].Start); got != 8*time.Hour {
			t.Errorf("%s: window length = %v, want 8h", tc.name, got)
		}
	}
}
