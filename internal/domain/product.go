package domain

import "github.com/shopspring/decimal"

// Product is read-only catalog data; carts only hold references to it.
type Product struct {
	ID          string
	Name        string
	UnitPrice   decimal.Decimal
	ImageRef    string
	Category    string
	Description string
}
