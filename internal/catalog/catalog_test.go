package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

type stubRepo struct {
	products map[string]*domain.Product
	getCalls int
}

func (s *stubRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.getCalls++
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *stubRepo) ListProducts(context.Context, string, bool) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "c1", Slug: "living-room"}}, nil
}

func setupService(t *testing.T) (*Service, *stubRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := &stubRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", NameFR: "Buffet en chêne", Price: 49.90, Stock: 4},
		"p2": {ID: "p2", NameFR: "Table basse", Price: 120.00, Stock: 2},
	}}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, client, log), repo, mr
}

func TestGetProduct_MissGoesToRepo(t *testing.T) {
	svc, repo, _ := setupService(t)

	product, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Buffet en chêne", product.NameFR)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetProduct_HitSkipsRepo(t *testing.T) {
	svc, repo, mr := setupService(t)

	cached := domain.Product{ID: "p1", NameFR: "Buffet en chêne", Price: 49.90}
	data, _ := json.Marshal(cached)
	mr.Set(productKey("p1"), string(data))

	product, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, 0, repo.getCalls)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestGetProduct_PopulatesCache(t *testing.T) {
	svc, _, mr := setupService(t)

	_, err := svc.GetProduct(context.Background(), "p1")
	require.NoError(t, err)

	// the cache write is async
	require.Eventually(t, func() bool {
		return mr.Exists(productKey("p1"))
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidate(t *testing.T) {
	svc, _, mr := setupService(t)

	mr.Set(productKey("p1"), `{"id":"p1"}`)
	svc.Invalidate(context.Background(), "p1")
	assert.False(t, mr.Exists(productKey("p1")))
}

func TestPriceCart(t *testing.T) {
	svc, _, _ := setupService(t)

	cart := &domain.Cart{
		SessionID: "sess-1",
		Items: []domain.CartItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}

	lines, total, err := svc.PriceCart(context.Background(), cart)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.InDelta(t, 99.80, lines[0].Subtotal, 1e-9)
	assert.InDelta(t, 219.80, total, 1e-9)
}

func TestPriceCart_SkipsMissingProducts(t *testing.T) {
	svc, _, _ := setupService(t)

	cart := &domain.Cart{
		SessionID: "sess-1",
		Items: []domain.CartItem{
			{ProductID: "gone", Quantity: 3},
			{ProductID: "p1", Quantity: 1},
		},
	}

	lines, total, err := svc.PriceCart(context.Background(), cart)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.InDelta(t, 49.90, total, 1e-9)
}

func TestPriceCart_EmptyCart(t *testing.T) {
	svc, _, _ := setupService(t)

	lines, total, err := svc.PriceCart(context.Background(), &domain.Cart{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Zero(t, total)
}
