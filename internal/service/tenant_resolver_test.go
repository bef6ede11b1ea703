package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/pkg/cache"
)

func TestResolveByIDAndSlug(t *testing.T) {
	f := newFixture()
	resolver := NewTenantResolver(f.store.Tenants(), nil, nil)
	ctx := context.Background()

	byID, err := resolver.Resolve(ctx, f.tenant.ID)
	if err != nil {
		t.Fatalf("resolve by id failed: %v", err)
	}
	bySlug, err := resolver.Resolve(ctx, "demo-salon")
	if err != nil {
		t.Fatalf("resolve by slug failed: %v", err)
	}
	if byID.ID != bySlug.ID {
		t.Fatalf("expected the same tenant, got %s and %s", byID.ID, bySlug.ID)
	}
}

func TestResolveFailsClosed(t *testing.T) {
	f := newFixture()
	resolver := NewTenantResolver(f.store.Tenants(), nil, nil)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty identifier, got %v", err)
	}
	if _, err := resolver.Resolve(ctx, "   "); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for blank identifier, got %v", err)
	}
	if _, err := resolver.Resolve(ctx, "no-such-tenant"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown slug, got %v", err)
	}
}

func TestResolveInactiveTenant(t *testing.T) {
	f := newFixture()
	closed := f.store.AddTenant(&domain.Tenant{Slug: "closed-shop", Timezone: "UTC", IsActive: false})
	resolver := NewTenantResolver(f.store.Tenants(), nil, nil)

	if _, err := resolver.Resolve(context.Background(), closed.Slug); !errors.Is(err, domain.ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestResolveUsesCache(t *testing.T) {
	f := newFixture()
	c := cache.New[*domain.Tenant](time.Minute)
	resolver := NewTenantResolver(f.store.Tenants(), c, nil)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "demo-salon"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, ok := c.Get("demo-salon"); !ok {
		t.Fatal("expected resolver to populate the cache")
	}

	// cached entries short-circuit the repository entirely
	c.Set("ghost", f.tenant)
	got, err := resolver.Resolve(ctx, "ghost")
	if err != nil || got.ID != f.tenant.ID {
		t.Fatalf("expected cache hit, got %v / %v", got, err)
	}
}
