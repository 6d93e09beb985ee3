// Package cart implements the client-side working set of a checkout
// session. A Cart is owned by one session and is not safe for concurrent
// mutation; SessionStore implementations are.
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// Cart aggregates line items. Totals are derived on every read.
type Cart struct {
	items       []models.CartItem
	deliveryFee decimal.Decimal
}

// New builds a cart from previously saved lines. Lines with a non-positive
// quantity are dropped.
func New(deliveryFee decimal.Decimal, items ...models.CartItem) *Cart {
	c := &Cart{deliveryFee: deliveryFee}
	for _, item := range items {
		if item.Quantity > 0 {
			c.items = append(c.items, item)
		}
	}
	return c
}

// AddItem increments the product's line or appends a new one with quantity 1.
func (c *Cart) AddItem(p *models.Product) {
	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, models.CartItem{
		ProductID:    p.ID,
		Name:         p.Name,
		PharmacyID:   p.PharmacyID,
		PharmacyName: p.PharmacyName,
		Price:        p.Price,
		OldPrice:     p.OldPrice,
		Quantity:     1,
	})
}

// RemoveItem drops the product's line whatever its quantity.
func (c *Cart) RemoveItem(productID int64) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

// UpdateQuantity applies a +1/-1 delta. Lines that reach zero are removed.
func (c *Cart) UpdateQuantity(productID int64, delta int) error {
	if delta != 1 && delta != -1 {
		return errors.NewValidationError("delta", "delta must be 1 or -1")
	}

	kept := c.items[:0]
	for _, item := range c.items {
		if item.ProductID == productID {
			item.Quantity += delta
		}
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	c.items = kept
	return nil
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the lines.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// DeliveryFee is charged once per checkout, and only for a non-empty cart.
func (c *Cart) DeliveryFee() decimal.Decimal {
	if !c.Subtotal().IsPositive() {
		return decimal.Zero
	}
	return c.deliveryFee
}

func (c *Cart) Total() decimal.Decimal {
	subtotal := c.Subtotal()
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Add(c.deliveryFee)
}

// View renders the cart for a session.
func (c *Cart) View(sessionID string) *models.CartView {
	return &models.CartView{
		SessionID:   sessionID,
		Items:       c.Items(),
		ItemCount:   c.ItemCount(),
		Subtotal:    c.Subtotal(),
		DeliveryFee: c.DeliveryFee(),
		Total:       c.Total(),
	}
}
