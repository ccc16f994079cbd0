package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/JacqueDave/WebsiteJacques/internal/service"
)

// maxWebhookBody caps the raw payload read for signature verification.
const maxWebhookBody = 1 << 20

const checkoutCompletedEvent = "checkout.session.completed"

// StripeWebhook handles POST /api/v1/webhooks/stripe. The raw body is
// verified against the endpoint signing secret before anything is parsed;
// events other than a completed checkout are acknowledged without side
// effects so the provider stops retrying them.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Failed to read request body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.cfg.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn().Err(err).Str("client_ip", getClientIP(r)).Msg("webhook signature verification failed")
		writeError(w, http.StatusBadRequest, "invalid_signature", "Webhook signature verification failed")
		return
	}

	if string(event.Type) != checkoutCompletedEvent {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	sess, err := service.ParseCheckoutSession(event.Data.Raw)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to decode checkout session")
		writeError(w, http.StatusBadRequest, "invalid_event", "Malformed checkout session payload")
		return
	}

	if err := h.purchaseSvc.FulfillCheckout(r.Context(), sess); err != nil {
		if errors.Is(err, service.ErrNoRecipient) {
			h.log.Error().Str("event_id", event.ID).Msg("no customer email on checkout session")
			writeError(w, http.StatusBadRequest, "missing_email", "No customer email provided")
			return
		}
		// Details stay server-side; the provider only needs to know to retry.
		h.log.Error().Err(err).Str("event_id", event.ID).Msg("failed to fulfill checkout")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to send email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true, "email_sent": true})
}
