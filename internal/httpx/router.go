package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/auth"
)

type RouterDeps struct {
	Products *ProductHandler
	Carts    *CartHandler
	Orders   *OrderHandler
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Auth     *AuthHandler
	Contact  *ContactHandler
	Tokens   *auth.TokenManager
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(auth.Middleware(deps.Tokens))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", deps.Products.List)
		r.Get("/products/{id}", deps.Products.Get)
		r.Get("/categories", deps.Products.ListCategories)
		r.Post("/products", auth.Require(deps.Products.Create))
		r.Put("/products/{id}", auth.Require(deps.Products.Update))
		r.Delete("/products/{id}", auth.Require(deps.Products.Delete))
		r.Post("/categories", auth.Require(deps.Products.CreateCategory))

		r.Get("/cart/{sessionID}", deps.Carts.Get)
		r.Post("/cart/{sessionID}/items", deps.Carts.AddItem)
		r.Put("/cart/{sessionID}/items/{productID}", deps.Carts.UpdateItem)
		r.Delete("/cart/{sessionID}/items/{productID}", deps.Carts.RemoveItem)
		r.Delete("/cart/{sessionID}", deps.Carts.Clear)

		r.Post("/orders", deps.Orders.Create)
		r.Get("/orders/{id}", deps.Orders.Get)
		r.Get("/my-orders", auth.Require(deps.Orders.ListMine))
		r.Get("/orders", auth.Require(deps.Orders.ListAll))

		r.Post("/checkout/session", deps.Checkout.CreateSession)
		r.Get("/checkout/status/{sessionID}", deps.Checkout.Status)
		r.Post("/webhook/stripe", deps.Webhook.Handle)

		r.Post("/auth/register", deps.Auth.Register)
		r.Post("/auth/login", deps.Auth.Login)
		r.Get("/auth/me", auth.Require(deps.Auth.Me))
		r.Put("/auth/profile", auth.Require(deps.Auth.UpdateProfile))

		r.Post("/contact", deps.Contact.Create)
	})

	return r
}
