package domain

import (
	"context"
	"time"
)

// Staff is a bookable person within a tenant.
type Staff struct {
	ID          string
	TenantID    string
	DisplayName string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service is a bookable offering. Duration plus buffers define how a slot is
// carved out of an availability window.
type Service struct {
	ID                  string
	TenantID            string
	Name                string
	DurationMinutes     int
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	PriceCents          int64
	IsActive            bool
	StaffOnlyIDs        []string // empty means every active staff may perform it
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Duration returns the service duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// BufferBefore returns the pre-service buffer.
func (s *Service) BufferBefore() time.Duration {
	return time.Duration(s.BufferBeforeMinutes) * time.Minute
}

// BufferAfter returns the post-service buffer.
func (s *Service) BufferAfter() time.Duration {
	return time.Duration(s.BufferAfterMinutes) * time.Minute
}

// AllowsStaff reports whether the staff member may perform this service.
func (s *Service) AllowsStaff(staffID string) bool {
	if len(s.StaffOnlyIDs) == 0 {
		return true
	}
	for _, id := range s.StaffOnlyIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// Sellable reports whether the service has a configured price and can go
// through checkout.
func (s *Service) Sellable() bool {
	return s.IsActive && s.PriceCents > 0
}

// CatalogRepository defines data access for services and staff.
//
// GetServiceAnyTenant is the single deliberately unscoped lookup: the checkout
// intent gate derives the tenant from the service row itself and never trusts
// a client-supplied tenant id.
type CatalogRepository interface {
	GetService(ctx context.Context, tenantID, serviceID string) (*Service, error)
	GetServiceAnyTenant(ctx context.Context, serviceID string) (*Service, error)
	GetStaff(ctx context.Context, tenantID, staffID string) (*Staff, error)
	ListActiveStaff(ctx context.Context, tenantID string) ([]*Staff, error)
}
