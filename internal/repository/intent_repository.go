package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
)

// PostgresPaymentIntentRepository implements domain.PaymentIntentRepository
// using PostgreSQL. Transitions out of requires_payment are guarded in SQL so
// a racing confirm and sweep cannot both win.
type PostgresPaymentIntentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPaymentIntentRepository creates a new payment intent repository
func NewPostgresPaymentIntentRepository(db *sql.DB, logger *slog.Logger) *PostgresPaymentIntentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentIntentRepository{db: db, logger: logger}
}

const intentColumns = `id, tenant_id, service_id, customer_id, customer_name, amount_cents,
	status, proposed_start, COALESCE(staff_id::text, ''), COALESCE(booking_id::text, ''),
	expires_at, created_at, updated_at`

func scanIntent(row *sql.Row) (*domain.PaymentIntent, error) {
	pi := &domain.PaymentIntent{}
	err := row.Scan(
		&pi.ID, &pi.TenantID, &pi.ServiceID, &pi.CustomerID, &pi.CustomerName, &pi.AmountCents,
		&pi.Status, &pi.ProposedStart, &pi.StaffID, &pi.BookingID,
		&pi.ExpiresAt, &pi.CreatedAt, &pi.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment intent: %w", err)
	}
	return pi, nil
}

// Create persists a new intent in requires_payment state
func (r *PostgresPaymentIntentRepository) Create(ctx context.Context, pi *domain.PaymentIntent) error {
	var staffID any
	if pi.StaffID != "" {
		staffID = pi.StaffID
	}
	query := `
		INSERT INTO payment_intents (tenant_id, service_id, customer_id, customer_name,
			amount_cents, status, proposed_start, staff_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		pi.TenantID, pi.ServiceID, pi.CustomerID, pi.CustomerName,
		pi.AmountCents, pi.Status, pi.ProposedStart, staffID, pi.ExpiresAt,
	).Scan(&pi.ID, &pi.CreatedAt, &pi.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}
	return nil
}

// GetByID retrieves an intent by primary key
func (r *PostgresPaymentIntentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	query := `SELECT ` + intentColumns + ` FROM payment_intents WHERE id = $1`
	return scanIntent(r.db.QueryRowContext(ctx, query, id))
}

// MarkPaid transitions requires_payment -> paid and records the booking
func (r *PostgresPaymentIntentRepository) MarkPaid(ctx context.Context, id, bookingID string) error {
	query := `
		UPDATE payment_intents
		SET status = $3, booking_id = $2, updated_at = now()
		WHERE id = $1 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query, id, bookingID, domain.IntentPaid, domain.IntentRequiresPayment)
	if err != nil {
		return fmt.Errorf("failed to mark intent paid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrExpired
	}
	return nil
}

// MarkTerminal transitions requires_payment -> failed/cancelled
func (r *PostgresPaymentIntentRepository) MarkTerminal(ctx context.Context, id string, status domain.IntentStatus) error {
	query := `
		UPDATE payment_intents
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`
	if _, err := r.db.ExecContext(ctx, query, id, status, domain.IntentRequiresPayment); err != nil {
		return fmt.Errorf("failed to mark intent %s: %w", status, err)
	}
	return nil
}

// CancelExpired sweeps intents past their TTL
func (r *PostgresPaymentIntentRepository) CancelExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE payment_intents
		SET status = $2, updated_at = now()
		WHERE status = $1 AND expires_at < $3
	`
	res, err := r.db.ExecContext(ctx, query, domain.IntentRequiresPayment, domain.IntentCancelled, now)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel expired intents: %w", err)
	}
	return res.RowsAffected()
}
