package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a pharmacy order.
type OrderStatus string

const (
	OrderStatusPreparando OrderStatus = "preparando"
	OrderStatusEnviado    OrderStatus = "enviado"
	OrderStatusEntregue   OrderStatus = "entregue"
	OrderStatusCancelado  OrderStatus = "cancelado"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPreparando: {OrderStatusEnviado, OrderStatusCancelado},
	OrderStatusEnviado:    {OrderStatusEntregue, OrderStatusCancelado},
	OrderStatusEntregue:   {},
	OrderStatusCancelado:  {},
}

// IsValid reports whether s is a known status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	next, ok := orderTransitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Order is the part of a checkout that belongs to a single pharmacy.
// ClientName and PharmacyName are filled at read time.
type Order struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"user_id"`
	ClientName   string          `json:"client_name,omitempty"`
	PharmacyID   int64           `json:"pharmacy_id"`
	PharmacyName string          `json:"pharmacy_name,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	Date         time.Time       `json:"date"`
	Items        []OrderItem     `json:"items"`
}

// ItemsTotal sums price×quantity over the order's items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// FindItem returns the item with the given id.
func (o *Order) FindItem(itemID int64) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// OrderItem snapshots the product name and price at order time.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderGroup is the set of cart lines of one pharmacy within a checkout.
type OrderGroup struct {
	PharmacyID int64
	Items      []CartItem
	Total      decimal.Decimal
}

// CheckoutResult lists every order produced by a checkout.
type CheckoutResult struct {
	OrderIDs []int64  `json:"order_ids"`
	Orders   []*Order `json:"orders"`
}

// FirstOrderID returns the id of the first order created, or 0.
func (r *CheckoutResult) FirstOrderID() int64 {
	if len(r.OrderIDs) == 0 {
		return 0
	}
	return r.OrderIDs[0]
}

// UpdateOrderStatusRequest is the pharmacy-side status change payload.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}
