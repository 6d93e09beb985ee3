package models

import "github.com/shopspring/decimal"

// CartItem is one line of a client's working cart. It never reaches the
// catalog store directly; checkout snapshots it into an OrderItem.
type CartItem struct {
	ProductID    int64               `json:"product_id"`
	Name         string              `json:"name"`
	PharmacyID   int64               `json:"pharmacy_id"`
	PharmacyName string              `json:"pharmacy_name,omitempty"`
	Price        decimal.Decimal     `json:"price"`
	OldPrice     decimal.NullDecimal `json:"old_price"`
	Quantity     int                 `json:"quantity"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Savings is what the line saves against the product's old price.
func (i CartItem) Savings() decimal.Decimal {
	if !i.OldPrice.Valid || !i.OldPrice.Decimal.GreaterThan(i.Price) {
		return decimal.Zero
	}
	return i.OldPrice.Decimal.Sub(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartView is the read model returned to clients.
type CartView struct {
	SessionID   string          `json:"session_id"`
	Items       []CartItem      `json:"items"`
	ItemCount   int             `json:"item_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}
