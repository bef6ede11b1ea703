package test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/chairtime/internal/availability"
	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/handler"
	"github.com/yourorg/chairtime/internal/infrastructure/logger"
	"github.com/yourorg/chairtime/internal/repository"
	"github.com/yourorg/chairtime/internal/security/auth"
	"github.com/yourorg/chairtime/internal/security/middleware"
	"github.com/yourorg/chairtime/internal/service"
)

const testJWTSecret = "integration-test-secret"

// TestServer wires the whole HTTP surface over the in-memory store, matching
// the production route table without Postgres or Redis.
type TestServer struct {
	Server  *httptest.Server
	Store   *repository.MemoryStore
	Tenant  *domain.Tenant
	Staff   *domain.Staff
	Service *domain.Service
	Tokens  *auth.TokenManager
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	log := logger.NewLogger("error")

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

	resolver := service.NewTenantResolver(store.Tenants(), nil, log)
	slots := service.NewAvailabilityService(
		store.Catalog(), store.Schedules(), store.Bookings(), availability.AlignedSlicer{}, 90, log)
	bookings := service.NewBookingService(store.Bookings(), store.Catalog(), nil, log)
	checkout := service.NewCheckoutService(
		store.Catalog(), store.Intents(), store.Bookings(), bookings, 15*time.Minute, log)
	conflicts := service.NewConflictService(store.Bookings(), store.Schedules(), bookings, log)
	webhooks := service.NewWebhookService(store.WebhookEvents(), store.Intents(), checkout, log)

	tokens := auth.NewTokenManager(testJWTSecret, "chairtime")
	requireStaff := middleware.RequireStaff(tokens, log)

	mux := http.NewServeMux()
	mux.Handle("GET /api/availability", handler.NewAvailabilityHandler(resolver, slots, 90, log))
	mux.Handle("POST /api/checkout/intent", handler.NewCheckoutIntentHandler(checkout, log))
	mux.Handle("POST /api/checkout/confirm", handler.NewCheckoutConfirmHandler(checkout, log))
	mux.Handle("POST /api/webhooks/payment", handler.NewWebhookHandler(webhooks, "", log))
	mux.Handle("POST /api/bookings", requireStaff(handler.NewBookingsHandler(bookings, log)))
	mux.Handle("GET /api/bookings/conflicts", requireStaff(handler.NewConflictsHandler(conflicts, log)))
	mux.Handle("POST /api/bookings/force", requireStaff(handler.NewForceBookingHandler(conflicts, log)))
	mux.Handle("PATCH /api/bookings/{id}/status", requireStaff(handler.NewBookingStatusHandler(bookings, log)))

	return &TestServer{
		Server:  httptest.NewServer(mux),
		Store:   store,
		Tenant:  tenant,
		Staff:   staff,
		Service: svc,
		Tokens:  tokens,
	}
}

func (s *TestServer) Close() {
	s.Server.Close()
}

func (s *TestServer) URL() string {
	return s.Server.URL
}

// StaffToken mints a bearer token scoped to the seeded tenant.
func (s *TestServer) StaffToken(t *testing.T, role string) string {
	t.Helper()
	token, err := s.Tokens.GenerateToken(s.Tenant.ID, "test-user", role, time.Hour)
	if err != nil {
		t.Fatalf("token generation failed: %v", err)
	}
	return token
}

func AssertStatusCode(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}
