package service

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// GroupTotal sums price×quantity over the lines of one pharmacy group.
// Delivery is charged on the cart, never on an order.
func GroupTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CheckoutSavings is what a checkout saved against old prices.
func CheckoutSavings(items []models.CartItem) decimal.Decimal {
	saved := decimal.Zero
	for _, item := range items {
		saved = saved.Add(item.Savings())
	}
	return saved
}
