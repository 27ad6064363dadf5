package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
)

// CartLine is one read-only line of the cart captured at checkout start.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CartSnapshot is the cart state frozen for one checkout attempt. Mutating
// the live cart after the snapshot is taken does not affect an order that
// was already created from it.
type CartSnapshot struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
}

type CustomerInfo struct {
	Name    string `json:"customer_name"`
	Email   string `json:"customer_email"`
	Phone   string `json:"customer_phone"`
	Address string `json:"customer_address"`
}

func (c CustomerInfo) validate() error {
	if c.Name == "" || c.Email == "" || c.Phone == "" || c.Address == "" {
		return errors.New("all customer fields are required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("invalid email %q: %w", c.Email, err)
	}
	return nil
}

// PaymentSession is the handle returned by the payment gateway for one
// order. SessionID is durable and is what the gateway puts back into the
// return URL; RedirectURL is where the buyer must be sent to pay.
type PaymentSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"url"`
}

// SessionStatus is the gateway's authoritative view of a payment session.
type SessionStatus struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// Wire values the status endpoint reports.
const (
	statusPaid    = "paid"
	statusExpired = "expired"
)

// OrderService creates the persisted order record. The cart session id is
// sent instead of line items; the backend re-derives authoritative lines
// and prices. A non-empty bearerToken links the order to an account.
type OrderService interface {
	CreateOrder(ctx context.Context, info CustomerInfo, cartSessionID, bearerToken string) (orderID string, err error)
}

// PaymentGateway wraps the hosted-payment provider: session creation and
// the status endpoint polled after redirect-back.
type PaymentGateway interface {
	CreateSession(ctx context.Context, orderID, originURL string) (PaymentSession, error)
	SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
}

// CartStore is the session cart. Both operations are idempotent; clearing
// an already-empty cart is a no-op.
type CartStore interface {
	Snapshot(ctx context.Context, sessionID string) (CartSnapshot, error)
	Clear(ctx context.Context, sessionID string) error
}

var (
	// ErrEmptyCart is a caller guard: an empty cart never reaches the
	// order service.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrMissingSession means the return URL carried no session id, so
	// there is nothing to poll.
	ErrMissingSession = errors.New("missing payment session id")
)

// InitiationError wraps any failure between checkout start and the handoff
// to the payment page. No partial state is retried: the buyer resubmits
// the whole form, which creates a brand-new order.
type InitiationError struct {
	Step string // "validate", "order" or "session"
	Err  error
}

func (e *InitiationError) Error() string {
	return fmt.Sprintf("checkout initiation failed at %s: %v", e.Step, e.Err)
}

func (e *InitiationError) Unwrap() error { return e.Err }
