package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

var fee = decimal.RequireFromString("5.00")

func paracetamol() *models.Product {
	return &models.Product{
		ID:           1,
		PharmacyID:   10,
		PharmacyName: "Farmácia Popular",
		Name:         "Paracetamol 500mg",
		Price:        decimal.RequireFromString("8.90"),
		OldPrice:     decimal.NewNullDecimal(decimal.RequireFromString("12.90")),
	}
}

func vitaminC() *models.Product {
	return &models.Product{
		ID:         2,
		PharmacyID: 20,
		Name:       "Vitamina C 1g",
		Price:      decimal.RequireFromString("15.90"),
	}
}

func TestCart_AddItem(t *testing.T) {
	c := New(fee)

	c.AddItem(paracetamol())
	c.AddItem(paracetamol())
	c.AddItem(vitaminC())

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(10), items[0].PharmacyID)
	assert.Equal(t, "Farmácia Popular", items[0].PharmacyName)
	assert.True(t, items[0].OldPrice.Valid)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, int64(20), items[1].PharmacyID)
	assert.Equal(t, 3, c.ItemCount())
}

func TestCart_RemoveItem(t *testing.T) {
	c := New(fee)
	c.AddItem(paracetamol())
	c.AddItem(paracetamol())
	c.AddItem(vitaminC())

	c.RemoveItem(1)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)

	c.RemoveItem(99)
	assert.Len(t, c.Items(), 1)
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := New(fee)
	c.AddItem(paracetamol())

	require.NoError(t, c.UpdateQuantity(1, 1))
	assert.Equal(t, 2, c.Items()[0].Quantity)

	require.NoError(t, c.UpdateQuantity(1, -1))
	require.NoError(t, c.UpdateQuantity(1, -1))
	assert.True(t, c.IsEmpty())

	require.NoError(t, c.UpdateQuantity(1, -1))
	assert.True(t, c.IsEmpty())
}

func TestCart_UpdateQuantity_RejectsOtherDeltas(t *testing.T) {
	c := New(fee)
	c.AddItem(paracetamol())

	for _, delta := range []int{0, 2, -5} {
		err := c.UpdateQuantity(1, delta)
		_, ok := errors.AsValidation(err)
		assert.True(t, ok, "delta %d", delta)
	}
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_Totals(t *testing.T) {
	c := New(fee)

	assert.True(t, c.Subtotal().IsZero())
	assert.True(t, c.Total().IsZero())
	assert.True(t, c.DeliveryFee().IsZero())

	c.AddItem(paracetamol())
	c.AddItem(paracetamol())
	c.AddItem(vitaminC())

	assert.Equal(t, "33.70", c.Subtotal().StringFixed(2))
	assert.Equal(t, "5.00", c.DeliveryFee().StringFixed(2))
	assert.Equal(t, "38.70", c.Total().StringFixed(2))

	c.Clear()
	assert.True(t, c.Total().IsZero())
}

func TestCart_NewDropsNonPositiveLines(t *testing.T) {
	c := New(fee,
		models.CartItem{ProductID: 1, Price: decimal.NewFromInt(1), Quantity: 0},
		models.CartItem{ProductID: 2, Price: decimal.NewFromInt(1), Quantity: -2},
		models.CartItem{ProductID: 3, Price: decimal.NewFromInt(1), Quantity: 1},
	)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].ProductID)
}

func TestCart_ItemsReturnsCopy(t *testing.T) {
	c := New(fee)
	c.AddItem(paracetamol())

	items := c.Items()
	items[0].Quantity = 50

	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_View(t *testing.T) {
	c := New(fee)
	c.AddItem(vitaminC())

	view := c.View("sess-1")

	assert.Equal(t, "sess-1", view.SessionID)
	assert.Equal(t, 1, view.ItemCount)
	assert.Equal(t, "15.90", view.Subtotal.StringFixed(2))
	assert.Equal(t, "20.90", view.Total.StringFixed(2))
}

// Random operation sequences never leave a line at quantity <= 0 and the
// total always follows the subtotal + fee rule.
func TestCart_RandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []*models.Product{paracetamol(), vitaminC(), {ID: 3, PharmacyID: 10, Price: decimal.RequireFromString("6.50")}}

	c := New(fee)
	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		switch rng.Intn(4) {
		case 0:
			c.AddItem(p)
		case 1:
			_ = c.UpdateQuantity(p.ID, 1)
		case 2:
			_ = c.UpdateQuantity(p.ID, -1)
		case 3:
			c.RemoveItem(p.ID)
		}

		for _, item := range c.Items() {
			require.Greater(t, item.Quantity, 0)
		}
		if c.IsEmpty() {
			require.True(t, c.Total().IsZero())
		} else {
			require.True(t, c.Total().Equal(c.Subtotal().Add(fee)))
		}
	}
}
