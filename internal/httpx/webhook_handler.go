package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/events"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/gateway"
)

// WebhookHandler receives provider callbacks. The webhook is the
// authoritative paid signal; the polling status endpoint exists for the
// confirmation page, this exists for correctness when the buyer never
// returns to the site.
type WebhookHandler struct {
	payments  PaymentStore
	orders    OrderStore
	publisher Publisher
	secret    string
	log       *slog.Logger
}

func NewWebhookHandler(payments PaymentStore, orders OrderStore, publisher Publisher, secret string, log *slog.Logger) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{payments: payments, orders: orders, publisher: publisher, secret: secret, log: log}
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string `json:"id"`
			Status        string `json:"status"`
			PaymentStatus string `json:"payment_status"`
		} `json:"object"`
	} `json:"data"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}

	if err := gateway.VerifySignature(payload, r.Header.Get("Stripe-Signature"), h.secret); err != nil {
		h.log.Warn("webhook signature rejected", "err", err)
		respondError(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.sessionCompleted(w, r, event)
	case "checkout.session.expired":
		h.sessionExpired(w, r, event)
	default:
		// acknowledged but ignored; the provider retries anything non-2xx
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
	}
}

func (h *WebhookHandler) sessionCompleted(w http.ResponseWriter, r *http.Request, event webhookEvent) {
	sessionID := event.Data.Object.ID

	tx, err := h.payments.GetTransactionBySession(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.payments.UpdateTransactionStatus(r.Context(), sessionID, domain.SessionComplete, domain.PaymentPaid); err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.orders.UpdateOrderStatus(r.Context(), tx.OrderID, domain.OrderPaid); err != nil {
		h.log.Error("order paid transition failed", "order_id", tx.OrderID, "err", err)
	} else {
		payload := events.OrderPaidPayload{OrderID: tx.OrderID, SessionID: sessionID, Amount: tx.Amount}
		if err := h.publisher.Publish(r.Context(), events.EventOrderPaid, tx.OrderID, payload); err != nil {
			h.log.Warn("order paid event not published", "order_id", tx.OrderID, "err", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) sessionExpired(w http.ResponseWriter, r *http.Request, event webhookEvent) {
	sessionID := event.Data.Object.ID

	if err := h.payments.UpdateTransactionStatus(r.Context(), sessionID, domain.SessionExpired, domain.PaymentUnpaid); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
