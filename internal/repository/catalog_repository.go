package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-checkout/internal/db"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/port"
)

type catalogRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) (port.CatalogRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &catalogRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCatalogWithTx(tx pgx.Tx) port.CatalogRepository {
	return &catalogRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *catalogRepository) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("id is empty")
	}

	row, err := r.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("GetProductByID[%s]: %w", id, domain.ErrProductNotFound)
		}
		return domain.Product{}, fmt.Errorf("q.GetProduct: %w", err)
	}

	return mapProductToDomain(row), nil
}

func (r *catalogRepository) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" {
		return nil, fmt.Errorf("category is empty")
	}

	rows, err := r.q.ListProductsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("q.ListProductsByCategory: %w", err)
	}

	return mapProductsToDomain(rows), nil
}

func (r *catalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.ListProducts: %w", err)
	}

	return mapProductsToDomain(rows), nil
}

// UpsertProducts writes all products in one transaction; a failure leaves the table untouched.
func (r *catalogRepository) UpsertProducts(ctx context.Context, products []domain.Product) error {
	for _, p := range products {
		if err := validateProduct(p); err != nil {
			return fmt.Errorf("validateProduct[%s]: %w", p.ID, err)
		}
	}

	_, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (struct{}, error) {
		for _, p := range products {
			if err := q.UpsertProduct(ctx, mapProductToParams(p)); err != nil {
				return struct{}{}, fmt.Errorf("q.UpsertProduct[%s]: %w", p.ID, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func validateProduct(p domain.Product) error {
	if p.ID == "" {
		return fmt.Errorf("id is empty")
	}
	if p.Name == "" {
		return fmt.Errorf("name is empty")
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price[%s] is negative", p.UnitPrice)
	}
	return nil
}

func mapProductToParams(p domain.Product) db.UpsertProductParams {
	return db.UpsertProductParams{
		ID:          p.ID,
		Name:        p.Name,
		UnitPrice:   p.UnitPrice,
		ImageRef:    p.ImageRef,
		Category:    p.Category,
		Description: p.Description,
	}
}

func mapProductToDomain(row db.Product) domain.Product {
	return domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		UnitPrice:   row.UnitPrice,
		ImageRef:    row.ImageRef,
		Category:    row.Category,
		Description: row.Description,
	}
}

func mapProductsToDomain(rows []db.Product) []domain.Product {
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProductToDomain(row))
	}
	return products
}
