package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/yourorg/chairtime/internal/service"
)

const maxWebhookBody = 64 * 1024

// webhookPayload mirrors the payment provider's event envelope.
type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		PaymentIntentID string `json:"payment_intent_id"`
	} `json:"data"`
}

// WebhookHandler serves POST /api/webhooks/payment. Signature verification
// happens against the raw body before parsing.
type WebhookHandler struct {
	webhooks *service.WebhookService
	secret   string
	logger   *slog.Logger
}

// NewWebhookHandler creates the payment webhook handler
func NewWebhookHandler(webhooks *service.WebhookService, secret string, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{webhooks: webhooks, secret: secret, logger: logger}
}

// ServeHTTP handles payment provider callbacks
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		badRequest(w, "unable to read request body")
		return
	}

	if h.secret != "" {
		if !h.verify(body, r.Header.Get("X-Webhook-Signature")) {
			h.logger.Warn("Webhook signature verification failed")
			http.Error(w, `{"code":"invalid_signature"}`, http.StatusUnauthorized)
			return
		}
	} else {
		h.logger.Warn("Webhook secret not configured, accepting unsigned event")
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		badRequest(w, "invalid webhook payload")
		return
	}
	if payload.ID == "" {
		badRequest(w, "event id is required")
		return
	}

	fresh, err := h.webhooks.Process(r.Context(), service.WebhookEvent{
		ID:       payload.ID,
		Type:     payload.Type,
		IntentID: payload.Data.PaymentIntentID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"received":  true,
		"duplicate": !fresh,
	})
}

func (h *WebhookHandler) verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
