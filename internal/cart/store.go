package cart

import (
	"fmt"
	"math"
	"sync"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/port"
)

// Store is the only owner of cart mutation for one session.
type Store struct {
	mu      sync.Mutex
	lookup  port.ProductLookup
	items   []domain.LineItem
	version uint64 // incremented on every mutation
}

func NewStore(lookup port.ProductLookup) *Store {
	return &Store{lookup: lookup}
}

func (s *Store) Add(productID string) error {
	return s.AddItem(productID, 1)
}

// AddItem increases the quantity of an existing line or appends a new one.
func (s *Store) AddItem(productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("AddItem[%s, %d]: %w", productID, quantity, domain.ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		if quantity > math.MaxInt-s.items[i].Quantity {
			return fmt.Errorf("AddItem[%s, %d]: quantity overflow: %w", productID, quantity, domain.ErrInvalidQuantity)
		}
		s.items[i].Quantity += quantity
		s.version++
		return nil
	}

	product, ok := s.lookup.ProductByID(productID)
	if !ok {
		return fmt.Errorf("AddItem[%s]: %w", productID, domain.ErrProductNotFound)
	}

	s.items = append(s.items, domain.LineItem{
		ProductID: productID,
		Quantity:  quantity,
		Product:   product,
	})
	s.version++

	return nil
}

// RemoveItem is a no-op when the product is not in the cart.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
}

// UpdateQuantity sets the quantity directly. A non-positive quantity removes the line.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return nil
	}

	i := s.indexOf(productID)
	if i < 0 {
		return fmt.Errorf("UpdateQuantity[%s]: %w", productID, domain.ErrProductNotFound)
	}
	s.items[i].Quantity = quantity
	s.version++

	return nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.version++
}

// Cart returns a snapshot; mutating it does not affect the store.
func (s *Store) Cart() domain.Cart {
	cart, _ := s.Snapshot()
	return cart
}

// Snapshot returns a copy of the cart together with the version it was taken at.
func (s *Store) Snapshot() (domain.Cart, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return domain.Cart{}, s.version
	}

	items := make([]domain.LineItem, len(s.items))
	copy(items, s.items)

	return domain.Cart{Items: items}, s.version
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version
}

// Settle removes a paid snapshot from the cart. When the cart is unchanged since the
// snapshot it is cleared; otherwise only the paid quantities are subtracted, so lines
// added or increased after the snapshot stay in the cart.
func (s *Store) Settle(paid domain.Cart, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version == s.version {
		s.items = nil
		s.version++
		return
	}

	for _, line := range paid.Items {
		i := s.indexOf(line.ProductID)
		if i < 0 {
			continue
		}
		if s.items[i].Quantity <= line.Quantity {
			s.removeLocked(line.ProductID)
			continue
		}
		s.items[i].Quantity -= line.Quantity
	}
	s.version++
}
func (s *Store) Items() []domain.LineItem {
	return s.Cart().Items
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) indexOf(productID string) int {
	return domain.Cart{Items: s.items}.Find(productID)
}

func (s *Store) removeLocked(productID string) {
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.version++
}
