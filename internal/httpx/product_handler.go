package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

type ProductHandler struct {
	catalog Catalog
	store   ProductStore
}

func NewProductHandler(catalog Catalog, store ProductStore) *ProductHandler {
	return &ProductHandler{catalog: catalog, store: store}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	featuredOnly := r.URL.Query().Get("featured") == "true"

	products, err := h.catalog.ListProducts(r.Context(), category, featuredOnly)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeJSON(r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if product.NameFR == "" || product.Price <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product", "name_fr and a positive price are required")
		return
	}

	if err := h.store.CreateProduct(r.Context(), &product); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeJSON(r, &product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product.ID = chi.URLParam(r, "id")

	if err := h.store.UpdateProduct(r.Context(), &product); err != nil {
		respondDomainError(w, err)
		return
	}
	h.catalog.Invalidate(r.Context(), product.ID)
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	h.catalog.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decodeJSON(r, &category); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if category.NameFR == "" || category.Slug == "" {
		respondError(w, http.StatusBadRequest, "invalid_category", "name_fr and slug are required")
		return
	}

	if err := h.store.CreateCategory(r.Context(), &category); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}
