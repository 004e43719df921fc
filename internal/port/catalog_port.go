package port

import (
	"context"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

type CatalogRepository interface {
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	UpsertProducts(ctx context.Context, products []domain.Product) error
}
