package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.PaymentTransaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `INSERT INTO payment_transactions (id, session_id, order_id, amount, currency, status, payment_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.SessionID, tx.OrderID, tx.Amount, tx.Currency,
		tx.Status, tx.PaymentStatus, tx.CreatedAt, tx.UpdatedAt); err != nil {
		return fmt.Errorf("insert payment transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransactionBySession(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	query := `SELECT id, session_id, order_id, amount, currency, status, payment_status, created_at, updated_at
	          FROM payment_transactions WHERE session_id = $1`

	var tx domain.PaymentTransaction
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&tx.ID, &tx.SessionID, &tx.OrderID, &tx.Amount, &tx.Currency,
		&tx.Status, &tx.PaymentStatus, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction by session: %w", err)
	}
	return &tx, nil
}

// UpdateTransactionStatus records what the provider reported for the
// session. Writes are idempotent; replaying the same status is harmless.
func (r *Repository) UpdateTransactionStatus(ctx context.Context, sessionID, status, paymentStatus string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_transactions SET status = $2, payment_status = $3, updated_at = $4 WHERE session_id = $1`,
		sessionID, status, paymentStatus, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update payment transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
