package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/chairtime/internal/domain"
)

// MemoryStore holds every aggregate in memory and hands out repository views
// through Tenants()/Catalog()/Schedules()/Bookings()/Intents()/WebhookEvents().
// It backs unit tests and local development without Postgres.
//
// Booking creation simulates the database exclusion constraint: it serializes
// on the store mutex and re-checks overlap before inserting. That is also the
// documented fallback shape for storage engines without native range
// exclusion (serialize, re-check, insert).
type MemoryStore struct {
	mu        sync.Mutex
	tenants   map[string]*domain.Tenant
	staff     map[string]*domain.Staff
	services  map[string]*domain.Service
	schedules []*domain.Schedule
	blockings []*domain.Blocking
	bookings  map[string]*domain.Booking
	intents   map[string]*domain.PaymentIntent
	events    map[string]bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:  map[string]*domain.Tenant{},
		staff:    map[string]*domain.Staff{},
		services: map[string]*domain.Service{},
		bookings: map[string]*domain.Booking{},
		intents:  map[string]*domain.PaymentIntent{},
		events:   map[string]bool{},
	}
}

// Tenants returns the store viewed as a domain.TenantRepository
func (m *MemoryStore) Tenants() domain.TenantRepository { return memoryTenants{m} }

// Catalog returns the store viewed as a domain.CatalogRepository
func (m *MemoryStore) Catalog() domain.CatalogRepository { return memoryCatalog{m} }

// Schedules returns the store viewed as a domain.ScheduleRepository
func (m *MemoryStore) Schedules() domain.ScheduleRepository { return memorySchedules{m} }

// Bookings returns the store viewed as a domain.BookingRepository
func (m *MemoryStore) Bookings() domain.BookingRepository { return memoryBookings{m} }

// Intents returns the store viewed as a domain.PaymentIntentRepository
func (m *MemoryStore) Intents() domain.PaymentIntentRepository { return memoryIntents{m} }

// WebhookEvents returns the store viewed as a domain.WebhookEventRepository
func (m *MemoryStore) WebhookEvents() domain.WebhookEventRepository { return memoryEvents{m} }

// AddTenant seeds a tenant, assigning an id when absent
func (m *MemoryStore) AddTenant(t *domain.Tenant) *domain.Tenant {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.tenants[t.ID] = t
	return t
}

// AddStaff seeds a staff member
func (m *MemoryStore) AddStaff(s *domain.Staff) *domain.Staff {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.staff[s.ID] = s
	return s
}

// AddService seeds a service
func (m *MemoryStore) AddService(s *domain.Service) *domain.Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.services[s.ID] = s
	return s
}

// AddSchedule seeds a recurring window
func (m *MemoryStore) AddSchedule(s *domain.Schedule) *domain.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.schedules = append(m.schedules, s)
	return s
}

// AddBlocking seeds an ad-hoc unavailability
func (m *MemoryStore) AddBlocking(b *domain.Blocking) *domain.Blocking {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.blockings = append(m.blockings, b)
	return b
}

type memoryTenants struct{ s *MemoryStore }

func (r memoryTenants) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tenants[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryTenants) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memoryCatalog struct{ s *MemoryStore }

func (r memoryCatalog) GetService(ctx context.Context, tenantID, serviceID string) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.services[serviceID]; ok && s.TenantID == tenantID {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryCatalog) GetServiceAnyTenant(ctx context.Context, serviceID string) (*domain.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.services[serviceID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryCatalog) GetStaff(ctx context.Context, tenantID, staffID string) (*domain.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.staff[staffID]; ok && s.TenantID == tenantID {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryCatalog) ListActiveStaff(ctx context.Context, tenantID string) ([]*domain.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Staff
	for _, s := range r.s.staff {
		if s.TenantID == tenantID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type memorySchedules struct{ s *MemoryStore }

func (r memorySchedules) ListActiveSchedules(ctx context.Context, tenantID string, staffIDs []string) ([]*domain.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range staffIDs {
		wanted[id] = true
	}
	var out []*domain.Schedule
	for _, s := range r.s.schedules {
		if s.TenantID == tenantID && s.IsActive && wanted[s.StaffID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r memorySchedules) ListBlockings(ctx context.Context, tenantID string, staffIDs []string, from, to time.Time) ([]*domain.Blocking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range staffIDs {
		wanted[id] = true
	}
	var out []*domain.Blocking
	for _, b := range r.s.blockings {
		if b.TenantID == tenantID && wanted[b.StaffID] && b.StartsAt.Before(to) && from.Before(b.EndsAt) {
			out = append(out, b)
		}
	}
	return out, nil
}

type memoryBookings struct{ s *MemoryStore }

func (r memoryBookings) Create(ctx context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.Status.Active() {
		for _, existing := range r.s.bookings {
			if existing.TenantID != b.TenantID || existing.StaffID != b.StaffID {
				continue
			}
			if existing.Status.Active() && existing.Overlaps(b.StartsAt, b.EndsAt) {
				return domain.ErrOverlap
			}
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	clone := *b
	r.s.bookings[b.ID] = &clone
	return nil
}

func (r memoryBookings) GetByID(ctx context.Context, tenantID, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[id]; ok && b.TenantID == tenantID {
		clone := *b
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryBookings) GetByPaymentIntent(ctx context.Context, tenantID, intentID string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if intentID == "" {
		return nil, domain.ErrNotFound
	}
	for _, b := range r.s.bookings {
		if b.TenantID == tenantID && b.PaymentIntentID == intentID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memoryBookings) ListActiveOverlapping(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Booking
	for _, b := range r.s.bookings {
		if b.TenantID == tenantID && b.StaffID == staffID && b.Status.Active() && b.Overlaps(from, to) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r memoryBookings) UpdateStatus(ctx context.Context, tenantID, id string, status domain.BookingStatus) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	clone := *b
	return &clone, nil
}

type memoryIntents struct{ s *MemoryStore }

func (r memoryIntents) Create(ctx context.Context, pi *domain.PaymentIntent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if pi.ID == "" {
		pi.ID = uuid.NewString()
	}
	now := time.Now()
	pi.CreatedAt = now
	pi.UpdatedAt = now
	clone := *pi
	r.s.intents[pi.ID] = &clone
	return nil
}

func (r memoryIntents) GetByID(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if pi, ok := r.s.intents[id]; ok {
		clone := *pi
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r memoryIntents) MarkPaid(ctx context.Context, id, bookingID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pi, ok := r.s.intents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if pi.Status != domain.IntentRequiresPayment {
		return domain.ErrExpired
	}
	pi.Status = domain.IntentPaid
	pi.BookingID = bookingID
	pi.UpdatedAt = time.Now()
	return nil
}

func (r memoryIntents) MarkTerminal(ctx context.Context, id string, status domain.IntentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pi, ok := r.s.intents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if pi.Status == domain.IntentRequiresPayment {
		pi.Status = status
		pi.UpdatedAt = time.Now()
	}
	return nil
}

func (r memoryIntents) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var swept int64
	for _, pi := range r.s.intents {
		if pi.Status == domain.IntentRequiresPayment && now.After(pi.ExpiresAt) {
			pi.Status = domain.IntentCancelled
			pi.UpdatedAt = now
			swept++
		}
	}
	return swept, nil
}

type memoryEvents struct{ s *MemoryStore }

func (r memoryEvents) Record(ctx context.Context, eventID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.events[eventID] {
		return false, nil
	}
	r.s.events[eventID] = true
	return true, nil
}
