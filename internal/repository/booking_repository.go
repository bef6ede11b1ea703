package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/yourorg/chairtime/internal/domain"
)

// PostgresBookingRepository implements domain.BookingRepository using PostgreSQL.
//
// The overlap invariant is enforced by the bookings_no_overlap exclusion
// constraint, not by this code: the insert either commits or the storage
// engine rejects it with SQLSTATE 23P01, which Create maps to ErrOverlap.
// Application instances are horizontally scaled and uncoordinated, so no
// in-process lock could provide this guarantee.
type PostgresBookingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBookingRepository creates a new booking repository
func NewPostgresBookingRepository(db *sql.DB, logger *slog.Logger) *PostgresBookingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookingRepository{db: db, logger: logger}
}

const bookingColumns = `id, tenant_id, staff_id, service_id, customer_id, customer_name,
	starts_at, ends_at, status, COALESCE(payment_intent_id::text, ''), created_at, updated_at`

func scanBookingRow(scan func(dest ...any) error) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := scan(
		&b.ID, &b.TenantID, &b.StaffID, &b.ServiceID, &b.CustomerID, &b.CustomerName,
		&b.StartsAt, &b.EndsAt, &b.Status, &b.PaymentIntentID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return b, nil
}

// Create inserts a booking. Returns domain.ErrOverlap when the exclusion
// constraint rejects the range.
func (r *PostgresBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	var intentID any
	if b.PaymentIntentID != "" {
		intentID = b.PaymentIntentID
	}
	query := `
		INSERT INTO bookings (tenant_id, staff_id, service_id, customer_id, customer_name,
			starts_at, ends_at, status, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		b.TenantID, b.StaffID, b.ServiceID, b.CustomerID, b.CustomerName,
		b.StartsAt, b.EndsAt, b.Status, intentID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		mapped := mapConstraintErr(err)
		if errors.Is(mapped, domain.ErrOverlap) {
			r.logger.Info("booking rejected by exclusion constraint",
				slog.String("tenant_id", b.TenantID),
				slog.String("staff_id", b.StaffID),
				slog.Time("starts_at", b.StartsAt),
			)
			return domain.ErrOverlap
		}
		return fmt.Errorf("failed to create booking: %w", mapped)
	}
	return nil
}

// GetByID retrieves a booking scoped to a tenant
func (r *PostgresBookingRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND id = $2`
	return scanBookingRow(r.db.QueryRowContext(ctx, query, tenantID, id).Scan)
}

// GetByPaymentIntent retrieves the booking written for a payment intent, if
// any. At most one row can carry a given intent id.
func (r *PostgresBookingRepository) GetByPaymentIntent(ctx context.Context, tenantID, intentID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND payment_intent_id = $2`
	return scanBookingRow(r.db.QueryRowContext(ctx, query, tenantID, intentID).Scan)
}

// ListActiveOverlapping returns active-status bookings for one staff member
// intersecting [from, to)
func (r *PostgresBookingRepository) ListActiveOverlapping(ctx context.Context, tenantID, staffID string, from, to time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE tenant_id = $1 AND staff_id = $2
		  AND status = ANY($3)
		  AND starts_at < $5 AND ends_at > $4
		ORDER BY starts_at
	`
	statuses := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		statuses[i] = string(s)
	}
	rows, err := r.db.QueryContext(ctx, query, tenantID, staffID, pq.Array(statuses), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*domain.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateStatus applies a status transition and returns the updated booking.
// Reactivating transitions (none exist in the legal table today) would be
// subject to the exclusion constraint again.
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, tenantID, id string, status domain.BookingStatus) (*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + bookingColumns
	b, err := scanBookingRow(r.db.QueryRowContext(ctx, query, tenantID, id, status).Scan)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking status: %w", mapConstraintErr(err))
	}
	return b, nil
}
