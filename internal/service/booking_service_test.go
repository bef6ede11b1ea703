package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
)

func TestCreateBooking(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)

	b, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		TenantID:     f.tenant.ID,
		StaffID:      f.alex.ID,
		ServiceID:    f.haircut.ID,
		CustomerName: "Sam",
		StartsAt:     future(10, 0),
		Source:       SourceCustomer,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected booking id")
	}
	if b.Status != domain.StatusPending {
		t.Errorf("expected pending, got %s", b.Status)
	}
	if !b.EndsAt.Equal(future(10, 30)) {
		t.Errorf("expected end %v, got %v", future(10, 30), b.EndsAt)
	}
}

func TestCreateBookingOverlapRejected(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	ctx := context.Background()

	first := CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}
	if _, err := svc.CreateBooking(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// intersecting range for the same staff member
	second := first
	second.StartsAt = future(10, 15)
	if _, err := svc.CreateBooking(ctx, second); !errors.Is(err, domain.ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}

	// same range on the other staff member is fine
	second.StaffID = f.robin.ID
	if _, err := svc.CreateBooking(ctx, second); err != nil {
		t.Fatalf("other staff create failed: %v", err)
	}
}

func TestCreateBookingTenantsDoNotCollide(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	other := f.store.AddTenant(&domain.Tenant{Slug: "other", Timezone: "UTC", IsActive: true})
	otherStaff := f.store.AddStaff(&domain.Staff{TenantID: other.ID, DisplayName: "Kim", IsActive: true})
	otherService := f.store.AddService(&domain.Service{
		TenantID: other.ID, Name: "Trim", DurationMinutes: 30, PriceCents: 2000, IsActive: true,
	})

	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	if _, err := svc.CreateBooking(ctx, CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}); err != nil {
		t.Fatalf("tenant one create failed: %v", err)
	}

	// identical time range under a different tenant must not conflict
	if _, err := svc.CreateBooking(ctx, CreateBookingInput{
		TenantID: other.ID, StaffID: otherStaff.ID, ServiceID: otherService.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}); err != nil {
		t.Fatalf("tenant two create failed: %v", err)
	}
}

func TestCreateBookingCancelledFreesSlot(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	ctx := context.Background()

	in := CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}
	b, err := svc.CreateBooking(ctx, in)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.TransitionStatus(ctx, f.tenant.ID, b.ID, domain.StatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// the freed range is immediately bookable again
	if _, err := svc.CreateBooking(ctx, in); err != nil {
		t.Fatalf("rebook after cancel failed: %v", err)
	}
}

func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
				TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
				StartsAt: future(10, 0), Source: SourceStaff,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var created, overlapped int
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, domain.ErrOverlap):
			overlapped++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if created != 1 || overlapped != attempts-1 {
		t.Fatalf("expected 1 winner and %d overlaps, got %d/%d", attempts-1, created, overlapped)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	ctx := context.Background()

	base := CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(10, 0), Source: SourceCustomer,
	}

	past := base
	past.StartsAt = time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)
	var verr *domain.ValidationError
	if _, err := svc.CreateBooking(ctx, past); !errors.As(err, &verr) {
		t.Errorf("expected validation error for past start, got %v", err)
	}

	// staff recording a walk-in may backdate
	past.Source = SourceStaff
	if _, err := svc.CreateBooking(ctx, past); err != nil {
		t.Errorf("staff backdated create failed: %v", err)
	}

	unknownStaff := base
	unknownStaff.StaffID = "nope"
	if _, err := svc.CreateBooking(ctx, unknownStaff); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown staff, got %v", err)
	}

	terminal := base
	terminal.Status = domain.StatusCancelled
	if _, err := svc.CreateBooking(ctx, terminal); !errors.As(err, &verr) {
		t.Errorf("expected validation error for terminal create status, got %v", err)
	}
}

func TestCreateBookingStaffAllowList(t *testing.T) {
	f := newFixture()
	limited := f.store.AddService(&domain.Service{
		TenantID: f.tenant.ID, Name: "Coloring", DurationMinutes: 60,
		PriceCents: 9000, IsActive: true, StaffOnlyIDs: []string{f.robin.ID},
	})
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	ctx := context.Background()

	var verr *domain.ValidationError
	if _, err := svc.CreateBooking(ctx, CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: limited.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for disallowed staff, got %v", err)
	}

	if _, err := svc.CreateBooking(ctx, CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.robin.ID, ServiceID: limited.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	}); err != nil {
		t.Errorf("allowed staff create failed: %v", err)
	}
}

func TestTransitionStatus(t *testing.T) {
	f := newFixture()
	svc := NewBookingService(f.store.Bookings(), f.store.Catalog(), nil, nil)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, CreateBookingInput{
		TenantID: f.tenant.ID, StaffID: f.alex.ID, ServiceID: f.haircut.ID,
		StartsAt: future(10, 0), Source: SourceStaff,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	b, err = svc.TransitionStatus(ctx, f.tenant.ID, b.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("pending -> confirmed failed: %v", err)
	}
	if b.Status != domain.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}

	// confirmed -> pending is not in the table
	var verr *domain.ValidationError
	if _, err := svc.TransitionStatus(ctx, f.tenant.ID, b.ID, domain.StatusPending); !errors.As(err, &verr) {
		t.Errorf("expected validation error for illegal transition, got %v", err)
	}

	// another tenant cannot touch it
	if _, err := svc.TransitionStatus(ctx, "other-tenant", b.ID, domain.StatusCompleted); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound across tenants, got %v", err)
	}

	if _, err := svc.TransitionStatus(ctx, f.tenant.ID, b.ID, domain.StatusCompleted); err != nil {
		t.Errorf("confirmed -> completed failed: %v", err)
	}
}
