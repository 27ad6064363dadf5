package httpx

import (
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/events"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/gateway"
)

// successPath carries the provider's template placeholder; the provider
// substitutes the real session id when redirecting back.
const (
	successPath = "/order-success?session_id={CHECKOUT_SESSION_ID}"
	cancelPath  = "/checkout"
)

type CheckoutHandler struct {
	orders    OrderStore
	payments  PaymentStore
	provider  gateway.Provider
	publisher Publisher
	originURL string
	log       *slog.Logger
}

func NewCheckoutHandler(orders OrderStore, payments PaymentStore, provider gateway.Provider, publisher Publisher, originURL string, log *slog.Logger) *CheckoutHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CheckoutHandler{
		orders:    orders,
		payments:  payments,
		provider:  provider,
		publisher: publisher,
		originURL: strings.TrimRight(originURL, "/"),
		log:       log,
	}
}

type createSessionRequest struct {
	OrderID   string `json:"order_id"`
	OriginURL string `json:"origin_url"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type statusResponse struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// CreateSession asks the payment provider for a hosted checkout page for
// one existing order and records the session locally before handing the
// redirect URL back.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id is required")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), req.OrderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	origin := strings.TrimRight(req.OriginURL, "/")
	if origin == "" {
		origin = h.originURL
	}

	lineItems := make([]gateway.LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, gateway.LineItem{
			Name:       item.NameFR,
			UnitAmount: toCents(item.Price),
			Quantity:   item.Quantity,
		})
	}

	session, err := h.provider.CreateSession(r.Context(), gateway.SessionRequest{
		OrderID:    order.ID,
		Currency:   "eur",
		LineItems:  lineItems,
		SuccessURL: origin + successPath,
		CancelURL:  origin + cancelPath,
	})
	if err != nil {
		h.log.Error("payment session creation failed", "order_id", order.ID, "err", err)
		respondError(w, http.StatusBadGateway, "provider_error", "could not create payment session")
		return
	}

	tx := &domain.PaymentTransaction{
		SessionID:     session.ID,
		OrderID:       order.ID,
		Amount:        order.Total,
		Currency:      "eur",
		Status:        domain.SessionOpen,
		PaymentStatus: domain.PaymentUnpaid,
	}
	if err := h.payments.CreateTransaction(r.Context(), tx); err != nil {
		respondDomainError(w, err)
		return
	}
	if err := h.orders.SetOrderPaymentSession(r.Context(), order.ID, session.ID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{SessionID: session.ID, URL: session.URL})
}

// Status reports the session state the confirmation page polls for. Once
// a session is locally paid it short-circuits; the provider is not asked
// again and the answer never regresses.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	tx, err := h.payments.GetTransactionBySession(r.Context(), sessionID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if tx.PaymentStatus == domain.PaymentPaid {
		respondJSON(w, http.StatusOK, statusResponse{PaymentStatus: tx.PaymentStatus, Status: tx.Status})
		return
	}

	status, err := h.provider.SessionStatus(r.Context(), sessionID)
	if err != nil {
		h.log.Error("payment status query failed", "session_id", sessionID, "err", err)
		respondError(w, http.StatusBadGateway, "provider_error", "could not query payment status")
		return
	}

	if err := h.payments.UpdateTransactionStatus(r.Context(), sessionID, status.Status, status.PaymentStatus); err != nil {
		respondDomainError(w, err)
		return
	}
	if status.PaymentStatus == domain.PaymentPaid {
		h.markOrderPaid(r, tx.OrderID, sessionID, tx.Amount)
	}

	respondJSON(w, http.StatusOK, statusResponse{PaymentStatus: status.PaymentStatus, Status: status.Status})
}

// markOrderPaid transitions the order and announces it. Both steps are
// idempotent, so the webhook and the polling endpoint can race safely.
func (h *CheckoutHandler) markOrderPaid(r *http.Request, orderID, sessionID string, amount float64) {
	if err := h.orders.UpdateOrderStatus(r.Context(), orderID, domain.OrderPaid); err != nil {
		h.log.Error("order paid transition failed", "order_id", orderID, "err", err)
		return
	}

	payload := events.OrderPaidPayload{OrderID: orderID, SessionID: sessionID, Amount: amount}
	if err := h.publisher.Publish(r.Context(), events.EventOrderPaid, orderID, payload); err != nil {
		h.log.Warn("order paid event not published", "order_id", orderID, "err", err)
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
