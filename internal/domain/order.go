package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderPaid: true},
	OrderPaid:      {OrderShipped: true},
	OrderShipped:   {OrderDelivered: true},
	OrderDelivered: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// OrderItem is a line copied from the cart at order creation time. Later
// price or name changes in the catalog do not touch existing orders.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	NameFR    string  `json:"name_fr"`
	NameTR    string  `json:"name_tr"`
	NameEN    string  `json:"name_en"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id,omitempty"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	CustomerPhone    string      `json:"customer_phone"`
	CustomerAddress  string      `json:"customer_address"`
	Items            []OrderItem `json:"items"`
	Total            float64     `json:"total"`
	Status           OrderStatus `json:"status"`
	PaymentSessionID string      `json:"payment_session_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
