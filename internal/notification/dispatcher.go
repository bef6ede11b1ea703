// Package notification delivers booking events to customers and staff on a
// best-effort basis. Dispatch failures are logged and never propagate: a
// committed booking is never rolled back over a notification.
package notification

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// Event is one notification to deliver.
type Event struct {
	Type         string
	TenantID     string
	BookingID    string
	StaffID      string
	StartsAt     time.Time
	CustomerName string
}

// Dispatcher is the fire-and-forget notification boundary.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

// LogDispatcher writes events to the structured log. It stands in for a mail
// or SMS provider and keeps the same contract: bounded, throttled, never
// failing the caller.
type LogDispatcher struct {
	logger  *slog.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

// NewLogDispatcher creates a dispatcher allowing a burst of 20 and a steady
// 10 events/second, which bounds pressure on a real provider behind it.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		timeout: 5 * time.Second,
	}
}

// Dispatch implements Dispatcher.
func (d *LogDispatcher) Dispatch(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn("notification dropped",
			slog.String("type", ev.Type),
			slog.String("booking_id", ev.BookingID),
			slog.String("error", err.Error()),
		)
		return
	}

	d.logger.Info("notification dispatched",
		slog.String("type", ev.Type),
		slog.String("tenant_id", ev.TenantID),
		slog.String("booking_id", ev.BookingID),
		slog.String("staff_id", ev.StaffID),
		slog.Time("starts_at", ev.StartsAt),
	)
}
