package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// PostgresWebhookEventRepository implements domain.WebhookEventRepository.
// Event ids are inserted before processing; the primary key makes redelivery
// a visible no-op.
type PostgresWebhookEventRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresWebhookEventRepository creates a new webhook event repository
func NewPostgresWebhookEventRepository(db *sql.DB, logger *slog.Logger) *PostgresWebhookEventRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWebhookEventRepository{db: db, logger: logger}
}

// Record inserts the event id, returning false when it was already recorded
func (r *PostgresWebhookEventRepository) Record(ctx context.Context, eventID string) (bool, error) {
	query := `INSERT INTO webhook_events (event_id) VALUES ($1) ON CONFLICT (event_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows == 1, nil
}
