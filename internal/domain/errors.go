package domain

import "errors"

// Sentinel errors shared by the repository and the services in front of
// it, so handlers can map them to status codes without importing the
// storage layer.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("payment session not found")
	ErrEmailTaken       = errors.New("email already registered")
)
