package domain

import "time"

// Payment session lifecycle as reported by the hosted payment provider.
// Status tracks the session ("open", "complete", "expired"); PaymentStatus
// tracks the money ("unpaid", "paid").
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// PaymentTransaction is the local record of one hosted-payment session.
// Exactly one transaction exists per session id; it is updated in place as
// the provider reports progress.
type PaymentTransaction struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	OrderID       string    `json:"order_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
