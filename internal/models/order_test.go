package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     OrderStatus
		to       OrderStatus
		expected bool
	}{
		{"preparando to enviado", OrderStatusPreparando, OrderStatusEnviado, true},
		{"preparando to cancelado", OrderStatusPreparando, OrderStatusCancelado, true},
		{"preparando to entregue", OrderStatusPreparando, OrderStatusEntregue, false},
		{"enviado to entregue", OrderStatusEnviado, OrderStatusEntregue, true},
		{"enviado to cancelado", OrderStatusEnviado, OrderStatusCancelado, true},
		{"enviado to preparando", OrderStatusEnviado, OrderStatusPreparando, false},
		{"entregue to preparando", OrderStatusEntregue, OrderStatusPreparando, false},
		{"cancelado to enviado", OrderStatusCancelado, OrderStatusEnviado, false},
		{"unknown from", OrderStatus("pending"), OrderStatusEnviado, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPreparando.IsTerminal())
	assert.False(t, OrderStatusEnviado.IsTerminal())
	assert.True(t, OrderStatusEntregue.IsTerminal())
	assert.True(t, OrderStatusCancelado.IsTerminal())
	assert.False(t, OrderStatus("bogus").IsTerminal())
	assert.False(t, OrderStatus("bogus").IsValid())
}

func TestOrder_ItemsTotal(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{ID: 1, Price: decimal.RequireFromString("8.90"), Quantity: 2},
			{ID: 2, Price: decimal.RequireFromString("15.90"), Quantity: 1},
		},
	}

	assert.Equal(t, "33.70", order.ItemsTotal().StringFixed(2))

	item, ok := order.FindItem(2)
	assert.True(t, ok)
	assert.Equal(t, "15.90", item.Price.StringFixed(2))

	_, ok = order.FindItem(3)
	assert.False(t, ok)
}

func TestCartItem_Savings(t *testing.T) {
	onSale := CartItem{
		Price:    decimal.RequireFromString("8.90"),
		OldPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.90")),
		Quantity: 3,
	}
	assert.Equal(t, "12.00", onSale.Savings().StringFixed(2))

	regular := CartItem{Price: decimal.RequireFromString("6.50"), Quantity: 1}
	assert.True(t, regular.Savings().IsZero())

	raised := CartItem{
		Price:    decimal.RequireFromString("10"),
		OldPrice: decimal.NewNullDecimal(decimal.RequireFromString("9")),
		Quantity: 1,
	}
	assert.True(t, raised.Savings().IsZero())
}

func TestCheckoutResult_FirstOrderID(t *testing.T) {
	assert.Equal(t, int64(0), (&CheckoutResult{}).FirstOrderID())
	assert.Equal(t, int64(4), (&CheckoutResult{OrderIDs: []int64{4, 5}}).FirstOrderID())
}
