package domain_test

import (
	"testing"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/currency"
)

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already two places", in: "12.34", want: "12.34"},
		{name: "half rounds up", in: "0.125", want: "0.13"},
		{name: "below half rounds down", in: "0.124", want: "0.12"},
		{name: "negative half rounds away from zero", in: "-0.125", want: "-0.13"},
		{name: "integer", in: "1000", want: "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.RoundCents(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestMoney(t *testing.T) {
	price := domain.NewMoney(decimal.RequireFromString("129.99"), currency.INR)

	assert.Equal(t, "INR 389.97", price.MulInt(3).String())
	assert.Equal(t, "INR 23.40", price.MulRate(decimal.RequireFromString("0.18")).Round2().String())
	assert.True(t, domain.Zero(currency.INR).IsZero())
	assert.True(t, price.Add(domain.Zero(currency.INR)).Equal(price))
	assert.False(t, price.Equal(domain.NewMoney(price.Amount, currency.USD)))
}

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name      string
		number    string
		wantMask  string
		wantLast4 string
	}{
		{name: "plain digits", number: "4111111111111111", wantMask: "************1111", wantLast4: "1111"},
		{name: "with spaces", number: "4242 4242 4242 4242", wantMask: "************4242", wantLast4: "4242"},
		{name: "with dashes", number: "5500-0000-0000-0004", wantMask: "************0004", wantLast4: "0004"},
		{name: "short", number: "123", wantMask: "123", wantLast4: "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			masked, last4 := domain.MaskCardNumber(tt.number)
			assert.Equal(t, tt.wantMask, masked)
			assert.Equal(t, tt.wantLast4, last4)
		})
	}
}

func TestPricingConfigValidate(t *testing.T) {
	cfg := domain.DefaultPricingConfig()
	assert.NoError(t, cfg.Validate())

	cfg.TaxRate = decimal.RequireFromString("1.5")
	assert.EqualError(t, cfg.Validate(), "tax rate[1.5] is out of range [0, 1]")

	cfg = domain.DefaultPricingConfig()
	cfg.FlatShippingFee = decimal.NewFromInt(-1)
	assert.EqualError(t, cfg.Validate(), "flat shipping fee[-1] is negative")
}
