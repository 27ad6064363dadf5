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

const productColumns = `id, name_fr, name_tr, name_en, description_fr, description_tr, description_en,
	price, category_id, images, stock, featured, created_at`

func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()

	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal product images: %w", err)
	}

	query := `INSERT INTO products (id, name_fr, name_tr, name_en, description_fr, description_tr, description_en,
	          price, category_id, images, stock, featured, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.NameFR, p.NameTR, p.NameEN,
		p.DescriptionFR, p.DescriptionTR, p.DescriptionEN,
		p.Price, nullString(p.CategoryID), imagesJSON, p.Stock, p.Featured, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return p, nil
}

// ListProducts filters by category slug and featured flag; empty category
// means all categories.
func (r *Repository) ListProducts(ctx context.Context, category string, featuredOnly bool) ([]domain.Product, error) {
	query := `SELECT p.id, p.name_fr, p.name_tr, p.name_en, p.description_fr, p.description_tr, p.description_en,
	          p.price, p.category_id, p.images, p.stock, p.featured, p.created_at
	          FROM products p
	          LEFT JOIN categories c ON c.id = p.category_id
	          WHERE ($1 = '' OR c.slug = $1)
	            AND (NOT $2 OR p.featured)
	          ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, category, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	imagesJSON, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("marshal product images: %w", err)
	}

	query := `UPDATE products SET name_fr = $2, name_tr = $3, name_en = $4,
	          description_fr = $5, description_tr = $6, description_en = $7,
	          price = $8, category_id = $9, images = $10, stock = $11, featured = $12
	          WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.NameFR, p.NameTR, p.NameEN,
		p.DescriptionFR, p.DescriptionTR, p.DescriptionEN,
		p.Price, nullString(p.CategoryID), imagesJSON, p.Stock, p.Featured)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name_fr, name_tr, name_en, slug, COALESCE(image_url, ''), created_at
	          FROM categories ORDER BY name_fr`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.NameFR, &c.NameTR, &c.NameEN, &c.Slug, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	query := `INSERT INTO categories (id, name_fr, name_tr, name_en, slug, image_url, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.ExecContext(ctx, query,
		c.ID, c.NameFR, c.NameTR, c.NameEN, c.Slug, nullString(c.ImageURL), c.CreatedAt); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var categoryID sql.NullString
	var imagesJSON []byte

	if err := row.Scan(
		&p.ID, &p.NameFR, &p.NameTR, &p.NameEN,
		&p.DescriptionFR, &p.DescriptionTR, &p.DescriptionEN,
		&p.Price, &categoryID, &imagesJSON, &p.Stock, &p.Featured, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.CategoryID = categoryID.String
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return nil, fmt.Errorf("unmarshal product images: %w", err)
		}
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
