package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/observability/metrics"
)

// IntentSweeper periodically cancels payment intents past their TTL. This is
// hygiene only: every read path already treats expiry as a timestamp
// comparison, so correctness never depends on the sweep running.
type IntentSweeper struct {
	intents  domain.PaymentIntentRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewIntentSweeper creates a sweeper running at the given interval
func NewIntentSweeper(intents domain.PaymentIntentRepository, logger *slog.Logger, interval time.Duration) *IntentSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &IntentSweeper{intents: intents, logger: logger, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled
func (w *IntentSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("intent sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("intent sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *IntentSweeper) sweep(ctx context.Context) {
	swept, err := w.intents.CancelExpired(ctx, time.Now())
	if err != nil {
		w.logger.Error("intent sweep failed", slog.String("error", err.Error()))
		return
	}
	metrics.AddSweptIntents(swept)
	if swept > 0 {
		w.logger.Info("expired intents cancelled", slog.Int64("count", swept))
	}
}
