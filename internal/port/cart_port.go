package port

import "github.com/nikolayk812/storefront-checkout/internal/domain"

// ProductLookup resolves products synchronously for cart mutations.
type ProductLookup interface {
	ProductByID(id string) (domain.Product, bool)
}
