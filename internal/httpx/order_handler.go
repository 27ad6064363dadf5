package httpx

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/auth"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/cartstore"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/events"
)

type OrderHandler struct {
	orders    OrderStore
	carts     CartStore
	catalog   Catalog
	publisher Publisher
	log       *slog.Logger
}

func NewOrderHandler(orders OrderStore, carts CartStore, catalog Catalog, publisher Publisher, log *slog.Logger) *OrderHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OrderHandler{orders: orders, carts: carts, catalog: catalog, publisher: publisher, log: log}
}

type createOrderRequest struct {
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerAddress string `json:"customer_address"`
	CartSessionID   string `json:"cart_session_id"`
}

// Create builds an order from the server-side cart. The client sends only
// the cart session id; lines, names and prices are re-derived from the
// catalog so a tampered client cannot set its own totals.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" || req.CustomerPhone == "" || req.CustomerAddress == "" {
		respondError(w, http.StatusBadRequest, "invalid_customer", "all customer fields are required")
		return
	}
	if req.CartSessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_cart", "cart_session_id is required")
		return
	}

	cart, err := h.carts.Get(r.Context(), req.CartSessionID)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		return
	}
	if err != nil {
		respondDomainError(w, err)
		return
	}

	items, total, err := h.buildItems(r, cart)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
		return
	}

	order := &domain.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Items:           items,
		Total:           total,
	}
	if claims := auth.FromContext(r.Context()); claims != nil {
		order.UserID = claims.UserID
	}

	if err := h.orders.CreateOrder(r.Context(), order); err != nil {
		respondDomainError(w, err)
		return
	}

	h.publishCreated(r, order)
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListMine returns the authenticated user's orders, newest first.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())

	orders, err := h.orders.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// ListAll is the back-office view of every order, newest first.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) buildItems(r *http.Request, cart *domain.Cart) ([]domain.OrderItem, float64, error) {
	var items []domain.OrderItem
	var total float64

	for _, cartItem := range cart.Items {
		product, err := h.catalog.GetProduct(r.Context(), cartItem.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			h.log.Warn("order skips missing product", "product_id", cartItem.ProductID)
			continue
		}
		if err != nil {
			return nil, 0, err
		}

		subtotal := round2(product.Price * float64(cartItem.Quantity))
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			NameFR:    product.NameFR,
			NameTR:    product.NameTR,
			NameEN:    product.NameEN,
			Price:     product.Price,
			Quantity:  cartItem.Quantity,
			Subtotal:  subtotal,
		})
		total = round2(total + subtotal)
	}
	return items, total, nil
}

func (h *OrderHandler) publishCreated(r *http.Request, order *domain.Order) {
	lines := make([]events.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, events.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	payload := events.OrderCreatedPayload{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Lines:         lines,
		Total:         order.Total,
	}
	if err := h.publisher.Publish(r.Context(), events.EventOrderCreated, order.ID, payload); err != nil {
		h.log.Warn("order created event not published", "order_id", order.ID, "err", err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
