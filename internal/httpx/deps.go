package httpx

import (
	"context"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

// Consumer-side interfaces for everything the handlers touch. The
// repository, cart store, catalog service and event publisher satisfy
// them; tests substitute fakes.

type Catalog interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, category string, featuredOnly bool) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	PriceCart(ctx context.Context, cart *domain.Cart) ([]domain.CartLine, float64, error)
	Invalidate(ctx context.Context, id string)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, c *domain.Category) error
}

type CartStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	SetOrderPaymentSession(ctx context.Context, orderID, sessionID string) error
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

type PaymentStore interface {
	CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error
	GetTransactionBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error)
	UpdateTransactionStatus(ctx context.Context, sessionID, status, paymentStatus string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, id, name, phone, address string) error
	CreateContactMessage(ctx context.Context, msg *domain.ContactMessage) error
}

type Publisher interface {
	Publish(ctx context.Context, eventType, correlationID string, payload any) error
}
