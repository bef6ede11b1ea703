package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/yourorg/chairtime/internal/domain"
)

// PostgresCatalogRepository implements domain.CatalogRepository using PostgreSQL.
// Every query except GetServiceAnyTenant filters by tenant_id; that one exists
// so the checkout gate can derive the tenant from the service row itself.
type PostgresCatalogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCatalogRepository creates a new catalog repository
func NewPostgresCatalogRepository(db *sql.DB, logger *slog.Logger) *PostgresCatalogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCatalogRepository{db: db, logger: logger}
}

const serviceColumns = `id, tenant_id, name, duration_minutes, buffer_before_minutes,
	buffer_after_minutes, price_cents, is_active, staff_only_ids, created_at, updated_at`

func scanService(row *sql.Row) (*domain.Service, error) {
	s := &domain.Service{}
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Name, &s.DurationMinutes, &s.BufferBeforeMinutes,
		&s.BufferAfterMinutes, &s.PriceCents, &s.IsActive, pq.Array(&s.StaffOnlyIDs),
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan service: %w", err)
	}
	return s, nil
}

// GetService retrieves a service scoped to a tenant
func (r *PostgresCatalogRepository) GetService(ctx context.Context, tenantID, serviceID string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE tenant_id = $1 AND id = $2`
	return scanService(r.db.QueryRowContext(ctx, query, tenantID, serviceID))
}

// GetServiceAnyTenant retrieves a service by primary key only. Callers use the
// returned row's TenantID as the authoritative tenant for the operation.
func (r *PostgresCatalogRepository) GetServiceAnyTenant(ctx context.Context, serviceID string) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	return scanService(r.db.QueryRowContext(ctx, query, serviceID))
}

// GetStaff retrieves a staff member scoped to a tenant
func (r *PostgresCatalogRepository) GetStaff(ctx context.Context, tenantID, staffID string) (*domain.Staff, error) {
	st := &domain.Staff{}
	query := `
		SELECT id, tenant_id, display_name, is_active, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRowContext(ctx, query, tenantID, staffID).Scan(
		&st.ID, &st.TenantID, &st.DisplayName, &st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return st, nil
}

// ListActiveStaff returns all active staff of a tenant ordered by name
func (r *PostgresCatalogRepository) ListActiveStaff(ctx context.Context, tenantID string) ([]*domain.Staff, error) {
	query := `
		SELECT id, tenant_id, display_name, is_active, created_at, updated_at
		FROM staff
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY display_name
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var out []*domain.Staff
	for rows.Next() {
		st := &domain.Staff{}
		if err := rows.Scan(&st.ID, &st.TenantID, &st.DisplayName, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
