package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yourorg/chairtime/internal/domain"
	"github.com/yourorg/chairtime/internal/observability/metrics"
)

// WebhookEvent is one inbound payment-provider event after signature
// verification.
type WebhookEvent struct {
	ID       string
	Type     string // payment.succeeded, payment.failed
	IntentID string
}

// WebhookService processes provider events idempotently: every event id is
// recorded before processing, so a redelivered event short-circuits with no
// side effect.
type WebhookService struct {
	events   domain.WebhookEventRepository
	intents  domain.PaymentIntentRepository
	checkout *CheckoutService
	logger   *slog.Logger
}

// NewWebhookService creates a webhook processor
func NewWebhookService(
	events domain.WebhookEventRepository,
	intents domain.PaymentIntentRepository,
	checkout *CheckoutService,
	logger *slog.Logger,
) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{events: events, intents: intents, checkout: checkout, logger: logger}
}

// Process handles one event. The bool result reports whether the event was
// fresh; duplicates return (false, nil). Business outcomes of processing
// (overlap, expiry) are logged and recorded on the intent but still count as
// successful receipt — the provider must not redeliver over them.
func (s *WebhookService) Process(ctx context.Context, ev WebhookEvent) (bool, error) {
	if ev.ID == "" {
		return false, domain.Invalid("id", "required")
	}

	fresh, err := s.events.Record(ctx, ev.ID)
	if err != nil {
		return false, err
	}
	if !fresh {
		metrics.ObserveWebhook("duplicate")
		s.logger.Info("duplicate webhook event ignored", slog.String("event_id", ev.ID))
		return false, nil
	}

	switch ev.Type {
	case "payment.succeeded":
		if _, err := s.checkout.ConfirmIntent(ctx, ev.IntentID); err != nil {
			if errors.Is(err, domain.ErrOverlap) || errors.Is(err, domain.ErrExpired) || errors.Is(err, domain.ErrNotFound) {
				metrics.ObserveWebhook("rejected")
				s.logger.Warn("webhook confirmation rejected",
					slog.String("event_id", ev.ID),
					slog.String("intent_id", ev.IntentID),
					slog.String("reason", err.Error()),
				)
				return true, nil
			}
			return true, err
		}
	case "payment.failed":
		if err := s.intents.MarkTerminal(ctx, ev.IntentID, domain.IntentFailed); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return true, err
		}
	default:
		s.logger.Warn("unknown webhook event type",
			slog.String("event_id", ev.ID), slog.String("type", ev.Type))
	}

	metrics.ObserveWebhook("processed")
	return true, nil
}
