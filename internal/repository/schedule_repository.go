package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/yourorg/chairtime/internal/domain"
)

// PostgresScheduleRepository implements domain.ScheduleRepository using PostgreSQL
type PostgresScheduleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresScheduleRepository creates a new schedule repository
func NewPostgresScheduleRepository(db *sql.DB, logger *slog.Logger) *PostgresScheduleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresScheduleRepository{db: db, logger: logger}
}

// ListActiveSchedules returns the active recurring windows for the given staff
func (r *PostgresScheduleRepository) ListActiveSchedules(ctx context.Context, tenantID string, staffIDs []string) ([]*domain.Schedule, error) {
	query := `
		SELECT id, tenant_id, staff_id, weekday, start_minute, end_minute, is_active
		FROM schedules
		WHERE tenant_id = $1 AND staff_id = ANY($2) AND is_active = TRUE
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, pq.Array(staffIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		s := &domain.Schedule{}
		var weekday int
		if err := rows.Scan(&s.ID, &s.TenantID, &s.StaffID, &weekday, &s.StartMinute, &s.EndMinute, &s.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		s.Weekday = time.Weekday(weekday)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListBlockings returns blockings for the given staff intersecting [from, to)
func (r *PostgresScheduleRepository) ListBlockings(ctx context.Context, tenantID string, staffIDs []string, from, to time.Time) ([]*domain.Blocking, error) {
	query := `
		SELECT id, tenant_id, staff_id, type, reason, starts_at, ends_at
		FROM blockings
		WHERE tenant_id = $1 AND staff_id = ANY($2) AND starts_at < $4 AND ends_at > $3
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, pq.Array(staffIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list blockings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Blocking
	for rows.Next() {
		b := &domain.Blocking{}
		if err := rows.Scan(&b.ID, &b.TenantID, &b.StaffID, &b.Type, &b.Reason, &b.StartsAt, &b.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan blocking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
