package cart_test

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/storefront-checkout/internal/cart"
	"github.com/nikolayk812/storefront-checkout/internal/catalog"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddItem(t *testing.T) {
	p1, p2 := randomProduct(), randomProduct()

	tests := []struct {
		name      string
		adds      []addOp
		wantItems []domain.LineItem
		wantError error
	}{
		{
			name: "add new item: ok",
			adds: []addOp{{p1.ID, 2}},
			wantItems: []domain.LineItem{
				{ProductID: p1.ID, Quantity: 2, Product: p1},
			},
		},
		{
			name: "add same item twice merges quantity: ok",
			adds: []addOp{{p1.ID, 2}, {p1.ID, 3}},
			wantItems: []domain.LineItem{
				{ProductID: p1.ID, Quantity: 5, Product: p1},
			},
		},
		{
			name: "add two items keeps insertion order: ok",
			adds: []addOp{{p2.ID, 1}, {p1.ID, 1}},
			wantItems: []domain.LineItem{
				{ProductID: p2.ID, Quantity: 1, Product: p2},
				{ProductID: p1.ID, Quantity: 1, Product: p1},
			},
		},
		{
			name:      "add zero quantity: error",
			adds:      []addOp{{p1.ID, 0}},
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:      "add negative quantity: error",
			adds:      []addOp{{p1.ID, -1}},
			wantError: domain.ErrInvalidQuantity,
		},
		{
			name:      "add unknown product: error",
			adds:      []addOp{{gofakeit.UUID(), 1}},
			wantError: domain.ErrProductNotFound,
		},
		{
			name: "merge overflowing quantity: error",
			adds: []addOp{{p1.ID, math.MaxInt}, {p1.ID, 2}},
			wantItems: []domain.LineItem{
				{ProductID: p1.ID, Quantity: math.MaxInt, Product: p1},
			},
			wantError: domain.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cart.NewStore(catalog.New(p1, p2))

			var err error
			for _, op := range tt.adds {
				if err = store.AddItem(op.productID, op.quantity); err != nil {
					break
				}
			}
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assertItems(t, tt.wantItems, store.Items())
				return
			}
			require.NoError(t, err)

			assertItems(t, tt.wantItems, store.Items())
		})
	}
}

func TestStore_RemoveItem(t *testing.T) {
	p1, p2 := randomProduct(), randomProduct()
	store := cart.NewStore(catalog.New(p1, p2))

	require.NoError(t, store.AddItem(p1.ID, 2))
	require.NoError(t, store.AddItem(p2.ID, 1))

	store.RemoveItem(p1.ID)
	assertItems(t, []domain.LineItem{{ProductID: p2.ID, Quantity: 1, Product: p2}}, store.Items())

	// absent product is a no-op
	store.RemoveItem(p1.ID)
	store.RemoveItem(gofakeit.UUID())
	assert.Equal(t, 1, store.Len())
}

func TestStore_UpdateQuantity(t *testing.T) {
	p1, p2 := randomProduct(), randomProduct()

	tests := []struct {
		name      string
		productID string
		quantity  int
		wantItems []domain.LineItem
		wantError error
	}{
		{
			name:      "set quantity: ok",
			productID: p1.ID,
			quantity:  7,
			wantItems: []domain.LineItem{
				{ProductID: p1.ID, Quantity: 7, Product: p1},
			},
		},
		{
			name:      "zero quantity removes item: ok",
			productID: p1.ID,
			quantity:  0,
			wantItems: nil,
		},
		{
			name:      "negative quantity removes item: ok",
			productID: p1.ID,
			quantity:  -3,
			wantItems: nil,
		},
		{
			name:      "zero quantity for absent product is a no-op: ok",
			productID: p2.ID,
			quantity:  0,
			wantItems: []domain.LineItem{
				{ProductID: p1.ID, Quantity: 1, Product: p1},
			},
		},
		{
			name:      "absent product: error",
			productID: p2.ID,
			quantity:  2,
			wantError: domain.ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cart.NewStore(catalog.New(p1, p2))
			require.NoError(t, store.Add(p1.ID))

			err := store.UpdateQuantity(tt.productID, tt.quantity)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assertItems(t, tt.wantItems, store.Items())
		})
	}
}

func TestStore_Clear(t *testing.T) {
	p1 := randomProduct()
	store := cart.NewStore(catalog.New(p1))

	require.NoError(t, store.AddItem(p1.ID, 4))
	assert.Equal(t, 4, store.ItemCount())

	store.Clear()
	assert.Zero(t, store.Len())
	assert.Zero(t, store.ItemCount())
	assert.Empty(t, store.Cart().Items)
}

func TestStore_CartIsSnapshot(t *testing.T) {
	p1 := randomProduct()
	store := cart.NewStore(catalog.New(p1))
	require.NoError(t, store.AddItem(p1.ID, 1))

	snapshot := store.Cart()
	snapshot.Items[0].Quantity = 99

	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStore_RemoveThenAddRestoresLine(t *testing.T) {
	p1 := randomProduct()
	store := cart.NewStore(catalog.New(p1))

	require.NoError(t, store.AddItem(p1.ID, 3))
	before := store.Items()

	store.RemoveItem(p1.ID)
	require.NoError(t, store.AddItem(p1.ID, 3))

	assertItems(t, before, store.Items())
}

func TestStore_SettleUnchangedCartClears(t *testing.T) {
	p1, p2 := randomProduct(), randomProduct()
	store := cart.NewStore(catalog.New(p1, p2))
	require.NoError(t, store.AddItem(p1.ID, 2))
	require.NoError(t, store.AddItem(p2.ID, 1))

	paid, version := store.Snapshot()
	store.Settle(paid, version)

	assert.Zero(t, store.Len())
	assert.NotEqual(t, version, store.Version())
}

func TestStore_SettleKeepsChangesAfterSnapshot(t *testing.T) {
	p1, p2, p3 := randomProduct(), randomProduct(), randomProduct()

	tests := []struct {
		name      string
		change    func(t *testing.T, store *cart.Store)
		wantItems func() []domain.LineItem
	}{
		{
			name: "new line added: kept",
			change: func(t *testing.T, store *cart.Store) {
				require.NoError(t, store.Add(p3.ID))
			},
			wantItems: func() []domain.LineItem {
				return []domain.LineItem{{ProductID: p3.ID, Quantity: 1, Product: p3}}
			},
		},
		{
			name: "paid line increased: only the extra kept",
			change: func(t *testing.T, store *cart.Store) {
				require.NoError(t, store.AddItem(p1.ID, 3))
			},
			wantItems: func() []domain.LineItem {
				return []domain.LineItem{{ProductID: p1.ID, Quantity: 3, Product: p1}}
			},
		},
		{
			name: "paid line removed: nothing left",
			change: func(t *testing.T, store *cart.Store) {
				store.RemoveItem(p2.ID)
			},
			wantItems: func() []domain.LineItem { return nil },
		},
		{
			name: "paid line decreased: removed",
			change: func(t *testing.T, store *cart.Store) {
				require.NoError(t, store.UpdateQuantity(p1.ID, 1))
			},
			wantItems: func() []domain.LineItem { return nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cart.NewStore(catalog.New(p1, p2, p3))
			require.NoError(t, store.AddItem(p1.ID, 2))
			require.NoError(t, store.AddItem(p2.ID, 1))

			paid, version := store.Snapshot()
			tt.change(t, store)
			store.Settle(paid, version)

			assertItems(t, tt.wantItems(), store.Items())
		})
	}
}

func TestStore_VersionChangesOnEveryMutation(t *testing.T) {
	p1 := randomProduct()
	store := cart.NewStore(catalog.New(p1))

	mutations := []func(){
		func() { require.NoError(t, store.Add(p1.ID)) },
		func() { require.NoError(t, store.AddItem(p1.ID, 2)) },
		func() { require.NoError(t, store.UpdateQuantity(p1.ID, 5)) },
		func() { store.RemoveItem(p1.ID) },
		func() { store.Clear() },
	}

	for i, mutate := range mutations {
		before := store.Version()
		mutate()
		assert.Greater(t, store.Version(), before, "mutation %d", i)
	}

	before := store.Version()
	_ = store.Cart()
	store.RemoveItem(p1.ID)
	assert.Equal(t, before, store.Version(), "reads and no-op removals keep the version")
}

type addOp struct {
	productID string
	quantity  int
}

func randomProduct() domain.Product {
	return domain.Product{
		ID:        gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		UnitPrice: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		ImageRef:  gofakeit.URL(),
		Category:  gofakeit.ProductCategory(),
	}
}

func assertItems(t *testing.T, expected, actual []domain.LineItem) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}
