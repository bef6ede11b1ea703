package service

import (
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/repository"
)

// fixture is a seeded in-memory world shared by the service tests: one
// tenant, two staff members, a 30-minute service and full-week schedules.
type fixture struct {
	store   *repository.MemoryStore
	tenant  *domain.Tenant
	alex    *domain.Staff
	robin   *domain.Staff
	haircut *domain.Service
}

func newFixture() *fixture {
	store := repository.NewMemoryStore()

	tenant := store.AddTenant(&domain.Tenant{
		Slug:     "demo-salon",
		Timezone: "UTC",
		IsActive: true,
	})
	alex := store.AddStaff(&domain.Staff{
		TenantID:    tenant.ID,
		DisplayName: "Alex",
		IsActive:    true,
	})
	robin := store.AddStaff(&domain.Staff{
		TenantID:    tenant.ID,
		DisplayName: "Robin",
		IsActive:    true,
	})
	haircut := store.AddService(&domain.Service{
		TenantID:        tenant.ID,
		Name:            "Haircut",
		DurationMinutes: 30,
		PriceCents:      3500,
		IsActive:        true,
	})
	for _, staff := range []*domain.Staff{alex, robin} {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			store.AddSchedule(&domain.Schedule{
				TenantID:    tenant.ID,
				StaffID:     staff.ID,
				Weekday:     wd,
				StartMinute: 9 * 60,
				EndMinute:   17 * 60,
				IsActive:    true,
			})
		}
	}

	return &fixture{store: store, tenant: tenant, alex: alex, robin: robin, haircut: haircut}
}

// future returns a fixed instant far enough ahead that customer-facing
// past-start validation never interferes.
func future(h, m int) time.Time {
	return time.Date(2030, 6, 3, h, m, 0, 0, time.UTC)
}
