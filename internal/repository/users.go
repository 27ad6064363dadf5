package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

const uniqueViolation = "23505"

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	query := `INSERT INTO users (id, email, password_hash, name, phone, address, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name,
		nullString(user.Phone), nullString(user.Address), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, name, COALESCE(phone, ''), COALESCE(address, ''), created_at
	          FROM users WHERE email = $1`
	return r.queryUser(ctx, query, email)
}

func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, name, COALESCE(phone, ''), COALESCE(address, ''), created_at
	          FROM users WHERE id = $1`
	return r.queryUser(ctx, query, id)
}

func (r *Repository) queryUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.Phone, &user.Address, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

func (r *Repository) UpdateUserProfile(ctx context.Context, id, name, phone, address string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = $2, phone = $3, address = $4 WHERE id = $1`,
		id, name, nullString(phone), nullString(address))
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *Repository) CreateContactMessage(ctx context.Context, msg *domain.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()

	query := `INSERT INTO contact_messages (id, name, email, phone, message, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.Name, msg.Email, nullString(msg.Phone), msg.Message, msg.CreatedAt); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
