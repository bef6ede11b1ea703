package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/pkg/cache"
)

// TenantResolver maps an external identifier (UUID or slug) to a canonical
// tenant record. Every tenant-scoped operation goes through this resolver
// first; it is the entry point of the isolation guard and fails closed on
// empty or unresolvable identifiers.
type TenantResolver struct {
	tenants domain.TenantRepository
	cache   *cache.Cache[*domain.Tenant]
	logger  *slog.Logger
}

// NewTenantResolver creates a tenant resolver. The cache is optional and is a
// read-through optimization only.
func NewTenantResolver(tenants domain.TenantRepository, c *cache.Cache[*domain.Tenant], logger *slog.Logger) *TenantResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantResolver{tenants: tenants, cache: c, logger: logger}
}

// Resolve looks up a tenant by id when the identifier has UUID shape, falling
// back to slug lookup. Inactive tenants resolve to ErrInactive so handlers can
// surface them identically to unknown ones.
func (r *TenantResolver) Resolve(ctx context.Context, identifier string) (*domain.Tenant, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrNotFound
	}

	if r.cache != nil {
		if t, ok := r.cache.Get(identifier); ok {
			return t, nil
		}
	}

	var (
		t   *domain.Tenant
		err error
	)
	if _, parseErr := uuid.Parse(identifier); parseErr == nil {
		t, err = r.tenants.GetByID(ctx, identifier)
		if errors.Is(err, domain.ErrNotFound) {
			t, err = r.tenants.GetBySlug(ctx, identifier)
		}
	} else {
		t, err = r.tenants.GetBySlug(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if !t.IsActive {
		return nil, domain.ErrInactive
	}

	if r.cache != nil {
		r.cache.Set(identifier, t)
	}
	return t, nil
}
