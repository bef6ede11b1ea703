package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/chairtime/internal/observability/metrics"
)

// CounterStore is the shared window counter behind the limiter. It is
// external (Redis) so horizontally scaled instances share one budget.
type CounterStore interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// Limiter is a coarse fixed-window rate limiter for the public, unauthenticated
// surface. It bounds abuse; it is not a correctness mechanism, so a store
// failure fails open with a log line rather than taking the surface down.
type Limiter struct {
	store   CounterStore
	maxReqs int
	window  time.Duration
	logger  *slog.Logger
}

// NewLimiter creates a limiter allowing maxRequests per window per key
func NewLimiter(store CounterStore, maxRequests int, window time.Duration, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{store: store, maxReqs: maxRequests, window: window, logger: logger}
}

// Allow reports whether the key may proceed. When rejected, retryAfter is the
// remaining window the client should wait before retrying.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration) {
	if key == "" {
		return true, 0
	}

	count, remaining, err := l.store.IncrWindow(ctx, "ratelimit:"+key, l.window)
	if err != nil {
		l.logger.Error("rate limiter store unavailable", slog.String("error", err.Error()))
		return true, 0
	}

	if count > int64(l.maxReqs) {
		metrics.IncRateLimited()
		if remaining <= 0 {
			remaining = l.window
		}
		return false, remaining
	}
	return true, 0
}
