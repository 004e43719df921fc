package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nikolayk812/storefront-checkout/internal/catalog"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_GetProductByID(t *testing.T) {
	c := catalog.Seed()

	tests := []struct {
		name      string
		id        string
		wantName  string
		wantError error
	}{
		{
			name:     "existing product: ok",
			id:       "2",
			wantName: "Premium Smart Watch",
		},
		{
			name:      "missing product: not found",
			id:        "42",
			wantError: domain.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.GetProductByID(t.Context(), tt.id)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
		})
	}
}

func TestStatic_GetProductsByCategory(t *testing.T) {
	c := catalog.Seed()

	electronics, err := c.GetProductsByCategory(t.Context(), "electronics")
	require.NoError(t, err)
	require.Len(t, electronics, 2)
	assert.Equal(t, "1", electronics[0].ID)
	assert.Equal(t, "2", electronics[1].ID)

	none, err := c.GetProductsByCategory(t.Context(), "garden")
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Equal(t, []string{"accessories", "clothing", "electronics"}, c.Categories())
}

func TestStatic_UpsertKeepsOrder(t *testing.T) {
	c := catalog.New()
	ctx := t.Context()

	products := catalog.SeedProducts()
	require.NoError(t, c.UpsertProducts(ctx, products))

	renamed := products[0]
	renamed.Name = "Renamed"
	require.NoError(t, c.UpsertProducts(ctx, []domain.Product{renamed}))

	all, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(products))
	assert.Equal(t, "Renamed", all[0].Name)
}

type failingRepo struct {
	catalog.Static
}

func (*failingRepo) ListProducts(context.Context) ([]domain.Product, error) {
	return nil, errors.New("connection refused")
}

func TestLoad(t *testing.T) {
	snapshot, err := catalog.Load(t.Context(), catalog.Seed())
	require.NoError(t, err)

	p, ok := snapshot.ProductByID("3")
	require.True(t, ok)
	assert.Equal(t, "clothing", p.Category)

	_, err = catalog.Load(t.Context(), &failingRepo{})
	require.EqualError(t, err, "repo.ListProducts: connection refused")
}
