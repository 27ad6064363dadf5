package httpx

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/cartstore"
	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

type CartHandler struct {
	carts   CartStore
	catalog Catalog
}

func NewCartHandler(carts CartStore, catalog Catalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type cartResponse struct {
	SessionID string            `json:"session_id"`
	Items     []domain.CartItem `json:"items"`
	Lines     []domain.CartLine `json:"lines"`
	Total     float64           `json:"total"`
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the priced cart. An unknown session is an empty cart, not
// an error; the frontend creates session ids client-side.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	cart, err := h.carts.Get(r.Context(), sessionID)
	if errors.Is(err, cartstore.ErrCartNotFound) {
		cart = &domain.Cart{SessionID: sessionID}
	} else if err != nil {
		respondDomainError(w, err)
		return
	}

	h.respondPriced(w, r, cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	// reject unknown products before they pollute the cart
	if _, err := h.catalog.GetProduct(r.Context(), req.ProductID); err != nil {
		respondDomainError(w, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondPriced(w, r, cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	productID := chi.URLParam(r, "productID")

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.UpdateItem(r.Context(), sessionID, productID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondPriced(w, r, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), chi.URLParam(r, "sessionID"), chi.URLParam(r, "productID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondPriced(w, r, cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) respondPriced(w http.ResponseWriter, r *http.Request, cart *domain.Cart) {
	lines, total, err := h.catalog.PriceCart(r.Context(), cart)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := cartResponse{
		SessionID: cart.SessionID,
		Items:     cart.Items,
		Lines:     lines,
		Total:     total,
	}
	if resp.Items == nil {
		resp.Items = []domain.CartItem{}
	}
	if resp.Lines == nil {
		resp.Lines = []domain.CartLine{}
	}
	respondJSON(w, http.StatusOK, resp)
}
