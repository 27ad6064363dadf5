package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/cancoskuner690-cmd/gulum-mobilya/internal/domain"
)

// ErrCacheMiss is internal to the read path; callers only ever see
// repository errors or a product.
var errCacheMiss = errors.New("cache miss")

const productTTL = 10 * time.Minute

// ProductReader is the slice of the repository the catalog needs.
type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, category string, featuredOnly bool) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Service fronts the product repository with a Redis read-through cache.
// Carts are priced here so that client-supplied prices never reach an
// order.
type Service struct {
	repo  ProductReader
	redis *redis.Client
	sfg   singleflight.Group // collapses concurrent misses per product
	log   *slog.Logger
}

func NewService(repo ProductReader, redisClient *redis.Client, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, redis: redisClient, log: log}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		product, err := s.cacheGet(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, errCacheMiss) {
			s.log.Warn("product cache read failed", "product_id", id, "err", err)
		}

		product, err = s.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		go func() {
			if err := s.cacheSet(context.Background(), product); err != nil {
				s.log.Warn("product cache write failed", "product_id", id, "err", err)
			}
		}()

		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context, category string, featuredOnly bool) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, category, featuredOnly)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

// Invalidate drops one product from the cache after an admin write.
func (s *Service) Invalidate(ctx context.Context, id string) {
	if err := s.redis.Del(ctx, productKey(id)).Err(); err != nil {
		s.log.Warn("product cache invalidate failed", "product_id", id, "err", err)
	}
}

// PriceCart resolves each cart item against the catalog and returns
// server-priced lines plus the total. Items whose product has been
// removed are silently dropped rather than failing the whole cart.
func (s *Service) PriceCart(ctx context.Context, cart *domain.Cart) ([]domain.CartLine, float64, error) {
	var lines []domain.CartLine
	var total float64

	for _, item := range cart.Items {
		product, err := s.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				s.log.Warn("cart references missing product", "product_id", item.ProductID)
				continue
			}
			return nil, 0, fmt.Errorf("price cart: %w", err)
		}

		subtotal := round2(product.Price * float64(item.Quantity))
		lines = append(lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.NameFR,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
		})
		total = round2(total + subtotal)
	}

	return lines, total, nil
}

func (s *Service) cacheGet(ctx context.Context, id string) (*domain.Product, error) {
	data, err := s.redis.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	return &product, nil
}

func (s *Service) cacheSet(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}
	return s.redis.Set(ctx, productKey(product.ID), data, productTTL).Err()
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
