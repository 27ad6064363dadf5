package gateway

import (
	"context"
	"errors"
)

// LineItem is one priced order line sent to the payment provider. Amounts
// are integer cents; floats never cross the wire.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
}

// SessionRequest describes the hosted-checkout session to create for one
// order. SuccessURL and CancelURL are derived from the storefront origin.
type SessionRequest struct {
	OrderID    string
	Currency   string
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// Session is the provider's handle for a created checkout session.
type Session struct {
	ID  string
	URL string
}

// SessionStatus mirrors the provider's two status axes: the session
// lifecycle and whether money actually moved.
type SessionStatus struct {
	Status        string
	PaymentStatus string
}

// Provider is the hosted-payment backend. The storefront never sees card
// data; it only creates sessions and asks how they went.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
}

// ErrUnavailable is returned while the circuit is open; callers should
// surface a retryable failure instead of hammering the provider.
var ErrUnavailable = errors.New("payment provider unavailable")
