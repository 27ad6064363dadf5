package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

const orderColumns = `id, user_id, customer_name, customer_email, customer_phone, customer_address,
	items, total, status, payment_session_id, created_at`

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = domain.OrderPending
	}
	order.CreatedAt = time.Now().UTC()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, customer_name, customer_email, customer_phone, customer_address,
	          items, total, status, payment_session_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.db.ExecContext(ctx, query,
		order.ID, nullString(order.UserID),
		order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.CustomerAddress,
		itemsJSON, order.Total, order.Status, nullString(order.PaymentSessionID), order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.queryOrder(ctx, query, id)
}

// GetOrderBySession resolves the order behind a payment session id, which
// is all the confirmation page knows.
func (r *Repository) GetOrderBySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE payment_session_id = $1`
	return r.queryOrder(ctx, query, sessionID)
}

func (r *Repository) queryOrder(ctx context.Context, query string, arg any) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// SetOrderPaymentSession attaches the gateway session to an order once,
// right after session creation.
func (r *Repository) SetOrderPaymentSession(ctx context.Context, orderID, sessionID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_session_id = $2 WHERE id = $1`, orderID, sessionID)
	if err != nil {
		return fmt.Errorf("set order payment session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateOrderStatus enforces the pending -> paid -> shipped -> delivered
// progression; an out-of-order transition is rejected without touching the
// row.
func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	order, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == status {
		return nil
	}
	if !domain.CanTransition(order.Status, status) {
		return fmt.Errorf("invalid order status transition %s -> %s", order.Status, status)
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var userID, sessionID sql.NullString
	var itemsJSON []byte

	if err := row.Scan(
		&order.ID, &userID,
		&order.CustomerName, &order.CustomerEmail, &order.CustomerPhone, &order.CustomerAddress,
		&itemsJSON, &order.Total, &order.Status, &sessionID, &order.CreatedAt,
	); err != nil {
		return nil, err
	}

	order.UserID = userID.String
	order.PaymentSessionID = sessionID.String
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}
