package handler

import (
	"errors"
	"io"
	"net/http"

	"founder-coach-api/internal/domain"
)

// Stripe payloads are small; anything larger is not a real event.
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	billing domain.BillingService
	logger  domain.Logger
}

func NewWebhookHandler(billing domain.BillingService, logger domain.Logger) *WebhookHandler {
	return &WebhookHandler{
		billing: billing,
		logger:  logger,
	}
}

// Stripe authenticates with its signature header, not a bearer token.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	err = h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, domain.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "Invalid signature")
	case errors.Is(err, domain.ErrWebhookNotConfigured):
		h.logger.Warn("Stripe webhook received but no secret is configured")
		writeError(w, http.StatusServiceUnavailable, "Webhook not configured")
	default:
		// Stripe retries on 5xx.
		writeError(w, http.StatusInternalServerError, "Webhook processing failed")
	}
}
