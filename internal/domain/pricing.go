package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type PricingConfig struct {
	Currency              currency.Unit
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// DefaultPricingConfig matches the storefront defaults: 18% GST, free shipping above 1000, otherwise 50.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		Currency:              currency.INR,
		TaxRate:               decimal.RequireFromString("0.18"),
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(50),
	}
}

func (c PricingConfig) Validate() error {
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate[%s] is out of range [0, 1]", c.TaxRate)
	}
	if c.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("free shipping threshold[%s] is negative", c.FreeShippingThreshold)
	}
	if c.FlatShippingFee.IsNegative() {
		return fmt.Errorf("flat shipping fee[%s] is negative", c.FlatShippingFee)
	}
	return nil
}

// PricingResult is always derived from a cart, never edited in place.
type PricingResult struct {
	ItemCount int
	Subtotal  Money
	Tax       Money
	Shipping  Money
	Total     Money
}
