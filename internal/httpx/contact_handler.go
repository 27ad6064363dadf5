package httpx

import (
	"net/http"
	"net/mail"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

type ContactHandler struct {
	users UserStore
}

func NewContactHandler(users UserStore) *ContactHandler {
	return &ContactHandler{users: users}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "invalid_message", "name and message are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_email", "a valid email is required")
		return
	}

	msg := &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.users.CreateContactMessage(r.Context(), msg); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}
