package domain

import (
	"context"
	"time"
)

// Tenant is an isolated business account. Every other entity hangs off its ID;
// that foreign key is the isolation boundary for all reads and writes.
type Tenant struct {
	ID        string
	Slug      string
	Timezone  string // IANA name, e.g. "Europe/Berlin"
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the tenant timezone, falling back to UTC for bad data.
func (t *Tenant) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TenantRepository defines data access for tenants.
type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
}
