package catalog

import (
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedProducts is the demo storefront assortment.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Wireless Bluetooth Headphones",
			UnitPrice:   decimal.RequireFromString("129.99"),
			ImageRef:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e",
			Category:    "electronics",
			Description: "High-quality wireless headphones with noise cancellation and 20-hour battery life.",
		},
		{
			ID:          "2",
			Name:        "Premium Smart Watch",
			UnitPrice:   decimal.RequireFromString("199.99"),
			ImageRef:    "https://images.unsplash.com/photo-1546868871-7041f2a55e12",
			Category:    "electronics",
			Description: "Track your fitness, receive notifications, and more with this premium smartwatch.",
		},
		{
			ID:          "3",
			Name:        "Organic Cotton T-Shirt",
			UnitPrice:   decimal.RequireFromString("24.99"),
			ImageRef:    "https://images.unsplash.com/photo-1576566588028-4147f3842f27",
			Category:    "clothing",
			Description: "Comfortable and eco-friendly cotton t-shirt available in various colors and sizes.",
		},
		{
			ID:          "4",
			Name:        "Designer Leather Wallet",
			UnitPrice:   decimal.RequireFromString("49.99"),
			ImageRef:    "https://images.unsplash.com/photo-1627123424574-724758594e93",
			Category:    "accessories",
			Description: "Slim and stylish leather wallet with RFID protection and multiple card slots.",
		},
	}
}

func Seed() *Static {
	return New(SeedProducts()...)
}
