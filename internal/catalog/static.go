package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/port"
)

// Static is an in-memory, read-only catalog. Insertion order is kept for listings.
type Static struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	order    []string
}

func New(products ...domain.Product) *Static {
	s := &Static{products: make(map[string]domain.Product, len(products))}
	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
	return s
}

// Load snapshots a repository so cart operations never touch the network.
func Load(ctx context.Context, repo port.CatalogRepository) (*Static, error) {
	products, err := repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.ListProducts: %w", err)
	}
	return New(products...), nil
}

func (s *Static) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok
}

func (s *Static) GetProductByID(_ context.Context, id string) (domain.Product, error) {
	p, ok := s.ProductByID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("GetProductByID[%s]: %w", id, domain.ErrProductNotFound)
	}
	return p, nil
}

func (s *Static) GetProductsByCategory(_ context.Context, category string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Product
	for _, id := range s.order {
		if p := s.products[id]; p.Category == category {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *Static) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.products[id])
	}
	return result, nil
}

func (s *Static) UpsertProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if _, ok := s.products[p.ID]; !ok {
			s.order = append(s.order, p.ID)
		}
		s.products[p.ID] = p
	}
	return nil
}

// Categories returns the distinct categories in sorted order.
func (s *Static) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var result []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		result = append(result, p.Category)
	}
	sort.Strings(result)
	return result
}

var (
	_ port.ProductLookup     = (*Static)(nil)
	_ port.CatalogRepository = (*Static)(nil)
)
