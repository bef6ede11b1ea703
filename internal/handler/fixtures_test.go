package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/chairtime/internal/availability"
	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/repository"
	"github.com/yourorg/chairtime/internal/security/auth"
	"github.com/yourorg/chairtime/internal/security/middleware"
	"github.com/yourorg/chairtime/internal/service"
)

// env is a fully wired in-memory world for handler tests.
type env struct {
	store     *repository.MemoryStore
	tenant    *domain.Tenant
	staff     *domain.Staff
	service   *domain.Service
	resolver  *service.TenantResolver
	slots     *service.AvailabilityService
	bookings  *service.BookingService
	checkout  *service.CheckoutService
	conflicts *service.ConflictService
	webhooks  *service.WebhookService
}

func newEnv() *env {
	store := repository.NewMemoryStore()

	tenant := store.AddTenant(&domain.Tenant{Slug: "demo-salon", Timezone: "UTC", IsActive: true})
	staff := store.AddStaff(&domain.Staff{TenantID: tenant.ID, DisplayName: "Alex", IsActive: true})
	svc := store.AddService(&domain.Service{
		TenantID: tenant.ID, Name: "Haircut", DurationMinutes: 30, PriceCents: 3500, IsActive: true,
	})
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		store.AddSchedule(&domain.Schedule{
			TenantID: tenant.ID, StaffID: staff.ID, Weekday: wd,
			StartMinute: 9 * 60, EndMinute: 17 * 60, IsActive: true,
		})
	}

	resolver := service.NewTenantResolver(store.Tenants(), nil, nil)
	slots := service.NewAvailabilityService(
		store.Catalog(), store.Schedules(), store.Bookings(), availability.AlignedSlicer{}, 90, nil)
	bookings := service.NewBookingService(store.Bookings(), store.Catalog(), nil, nil)
	checkout := service.NewCheckoutService(
		store.Catalog(), store.Intents(), store.Bookings(), bookings, 15*time.Minute, nil)
	conflicts := service.NewConflictService(store.Bookings(), store.Schedules(), bookings, nil)
	webhooks := service.NewWebhookService(store.WebhookEvents(), store.Intents(), checkout, nil)

	return &env{
		store: store, tenant: tenant, staff: staff, service: svc,
		resolver: resolver, slots: slots, bookings: bookings,
		checkout: checkout, conflicts: conflicts, webhooks: webhooks,
	}
}

// futureStart is a fixed far-future instant on a seeded schedule day.
func futureStart(h, m int) time.Time {
	return time.Date(2030, 6, 3, h, m, 0, 0, time.UTC)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return bytes.NewReader(raw)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

// asStaff injects token claims the way RequireStaff middleware would.
func asStaff(r *http.Request, tenantID, role string) *http.Request {
	claims := &auth.Claims{TenantID: tenantID, UserID: "test-user", Role: role}
	ctx := context.WithValue(r.Context(), middleware.ClaimsContextKey{}, claims)
	return r.WithContext(ctx)
}
