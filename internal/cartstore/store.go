package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

// ErrCartNotFound is returned for session ids that have no cart yet.
// Callers usually treat it as an empty cart.
var ErrCartNotFound = errors.New("cart not found")

const cartTTL = 7 * 24 * time.Hour

// Store keeps anonymous session carts in Redis, one JSON value per
// session. Carts expire a week after the last write.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client) *Store {
	return &Store{client: client, ttl: cartTTL}
}

func (s *Store) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &cart, nil
}

func (s *Store) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = cart.UpdatedAt
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// AddItem merges quantity into an existing line or appends a new one,
// creating the cart on first use.
func (s *Store) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	cart, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrCartNotFound) {
		cart = &domain.Cart{SessionID: sessionID}
	} else if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the absolute quantity of one line. Zero or negative
// removes the line.
func (s *Store) UpdateItem(ctx context.Context, sessionID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID == productID {
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		items = append(items, item)
	}
	cart.Items = items

	if err := s.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Store) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	return s.UpdateItem(ctx, sessionID, productID, 0)
}

// Clear deletes the cart. Deleting a missing cart is a no-op, which is
// what makes post-payment clearing safe to repeat.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
