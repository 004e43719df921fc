package pricing

import (
	"fmt"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

// ComputeTotals derives the order totals from scratch. Every component is rounded to cents
// before summing so Total always equals Subtotal + Tax + Shipping exactly.
func ComputeTotals(cart domain.Cart, cfg domain.PricingConfig) domain.PricingResult {
	subtotal := domain.Zero(cfg.Currency)
	var itemCount int

	for _, item := range cart.Items {
		itemCount += item.Quantity
		subtotal = subtotal.Add(LineTotal(item, cfg))
	}
	subtotal = subtotal.Round2()

	tax := subtotal.MulRate(cfg.TaxRate).Round2()
	shipping := shippingFor(subtotal, cfg)

	return domain.PricingResult{
		ItemCount: itemCount,
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.Add(tax).Add(shipping),
	}
}

// LineTotal is the unrounded unit price times quantity.
func LineTotal(item domain.LineItem, cfg domain.PricingConfig) domain.Money {
	return domain.NewMoney(item.Product.UnitPrice, cfg.Currency).MulInt(item.Quantity)
}

// shippingFor is free only strictly above the threshold.
func shippingFor(subtotal domain.Money, cfg domain.PricingConfig) domain.Money {
	if subtotal.IsZero() || subtotal.Amount.GreaterThan(cfg.FreeShippingThreshold) {
		return domain.Zero(cfg.Currency)
	}
	return domain.NewMoney(cfg.FlatShippingFee, cfg.Currency).Round2()
}

type Engine struct {
	cfg domain.PricingConfig
}

func NewEngine(cfg domain.PricingConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

func (e *Engine) Config() domain.PricingConfig {
	return e.cfg
}

func (e *Engine) Totals(cart domain.Cart) domain.PricingResult {
	return ComputeTotals(cart, e.cfg)
}
