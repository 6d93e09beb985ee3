package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

func TestPlaceOrder_OneOrderPerPharmacy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	result, err := f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{
		f.cartItem(t, paracetamolID, 2),
		f.cartItem(t, vitaminaCID, 1),
	})
	require.NoError(t, err)
	require.Len(t, result.OrderIDs, 2)
	assert.Equal(t, result.OrderIDs[0], result.FirstOrderID())

	first, second := result.Orders[0], result.Orders[1]
	assert.Equal(t, farmaciaPopular, first.PharmacyID)
	assert.True(t, first.Total.Equal(dec("17.80")))
	assert.Equal(t, farmaciaPacheco, second.PharmacyID)
	assert.True(t, second.Total.Equal(dec("15.90")))

	for _, order := range result.Orders {
		assert.Equal(t, models.OrderStatusPreparando, order.Status)
		assert.Equal(t, f.client.ID, order.UserID)
		assert.True(t, order.Total.Equal(order.ItemsTotal()))
	}

	user, err := f.users.GetUser(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Pedidos)
	assert.True(t, user.Economizou.Equal(dec("12.00")))

	assert.Equal(t, []events.EventType{events.EventTypeOrderCreated, events.EventTypeOrderCreated}, f.publisher.Types())
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.OrdersCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("success")))
}

func TestGetPharmacyOrders_CarryClientName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{f.cartItem(t, paracetamolID, 1)})
	require.NoError(t, err)

	orders, err := f.orders.GetPharmacyOrders(ctx, farmaciaPopular)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ana", orders[0].ClientName)
	assert.Equal(t, "Farmácia Popular", orders[0].PharmacyName)

	mine, err := f.orders.GetClientOrders(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Ana", mine[0].ClientName)
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	item := f.cartItem(t, paracetamolID, 1)

	_, err := f.orders.PlaceOrder(ctx, f.client.ID, nil)
	assert.ErrorIs(t, err, errors.ErrEmptyCart)

	_, err = f.orders.PlaceOrder(ctx, 0, []models.CartItem{item})
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = f.orders.PlaceOrder(ctx, 999, []models.CartItem{item})
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	bad := item
	bad.Quantity = 0
	_, err = f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{bad})
	_, isValidation := errors.AsValidation(err)
	assert.True(t, isValidation)

	orders, err := f.orders.GetClientOrders(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, float64(4), testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("rejected")))
}

func TestPlaceOrder_DefaultPharmacy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	item := f.cartItem(t, shampooID, 1)
	item.PharmacyID = 0

	result, err := f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{item})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, farmaciaPopular, result.Orders[0].PharmacyID)
}

func TestPlaceOrder_PartialFailureIsCompensated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(m *repository.MemoryStore) repository.Store {
		return &failingStore{MemoryStore: m, failOnCall: 2}
	})

	_, err := f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{
		f.cartItem(t, paracetamolID, 2),
		f.cartItem(t, vitaminaCID, 1),
	})

	partial, ok := errors.AsPartialOrder(err)
	require.True(t, ok)
	assert.ErrorIs(t, err, errStoreDown)
	require.Len(t, partial.CreatedOrderIDs, 1)
	assert.True(t, partial.Compensated)

	order, err := f.store.GetOrder(ctx, partial.CreatedOrderIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelado, order.Status)

	user, err := f.users.GetUser(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, user.Pedidos)

	assert.Equal(t, []events.EventType{events.EventTypeOrderCompensated}, f.publisher.Types())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Checkouts.WithLabelValues("partial")))
}

func TestPlaceOrder_PartialFailureWithoutCompensation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, func(m *repository.MemoryStore) repository.Store {
		return &failingStore{MemoryStore: m, failOnCall: 2}
	})
	f.config.Features.CompensateFailedCheckout = false

	_, err := f.orders.PlaceOrder(ctx, f.client.ID, []models.CartItem{
		f.cartItem(t, paracetamolID, 1),
		f.cartItem(t, vitaminaCID, 1),
	})

	partial, ok := errors.AsPartialOrder(err)
	require.True(t, ok)
	assert.False(t, partial.Compensated)

	order, err := f.store.GetOrder(ctx, partial.CreatedOrderIDs[0])
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparando, order.Status)
}

func TestPlaceOrder_FirstGroupFailureIsPlainError(t *testing.T) {
	f := newFixture(t, func(m *repository.MemoryStore) repository.Store {
		return &failingStore{MemoryStore: m, failOnCall: 1}
	})

	_, err := f.orders.PlaceOrder(context.Background(), f.client.ID, []models.CartItem{f.cartItem(t, paracetamolID, 1)})
	assert.ErrorIs(t, err, errStoreDown)
	_, isPartial := errors.AsPartialOrder(err)
	assert.False(t, isPartial)
}

func placeSingleOrder(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	result, err := f.orders.PlaceOrder(context.Background(), f.client.ID, []models.CartItem{
		f.cartItem(t, paracetamolID, 2),
		f.cartItem(t, 5, 1),
	})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	return result.Orders[0]
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	order := placeSingleOrder(t, f)

	update := func(status models.OrderStatus) error {
		_, err := f.orders.UpdateOrderStatus(ctx, farmaciaPopular, order.ID, &models.UpdateOrderStatusRequest{Status: status})
		return err
	}

	require.NoError(t, update(models.OrderStatusEnviado))
	require.NoError(t, update(models.OrderStatusEntregue))

	err := update(models.OrderStatusPreparando)
	v, ok := errors.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "status", v.Field)

	// The store on its own accepts the same change.
	require.NoError(t, f.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPreparando))

	_, ok = errors.AsValidation(update("perdido"))
	assert.True(t, ok)
}

func TestUpdateOrderStatus_Unguarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.config.Features.EnforceStatusTransitions = false
	order := placeSingleOrder(t, f)

	_, err := f.orders.UpdateOrderStatus(ctx, farmaciaPopular, order.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusEntregue})
	require.NoError(t, err)
	updated, err := f.orders.UpdateOrderStatus(ctx, farmaciaPopular, order.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusPreparando})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparando, updated.Status)
}

func TestUpdateOrderStatus_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	order := placeSingleOrder(t, f)
	req := &models.UpdateOrderStatusRequest{Status: models.OrderStatusEnviado}

	_, err := f.orders.UpdateOrderStatus(ctx, drogariaSaoPaulo, order.ID, req)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = f.orders.UpdateOrderStatus(ctx, f.client.ID, order.ID, req)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = f.orders.UpdateOrderStatus(ctx, 0, order.ID, req)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = f.orders.UpdateOrderStatus(ctx, farmaciaPopular, 999, req)
	assert.True(t, errors.IsNotFound(err))
}

func TestRemoveOrderItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	order := placeSingleOrder(t, f)
	require.True(t, order.Total.Equal(dec("57.70")))

	updated, err := f.orders.RemoveOrderItem(ctx, farmaciaPopular, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, updated.Total.Equal(dec("39.90")))
	assert.True(t, updated.Total.Equal(updated.ItemsTotal()))
	assert.Len(t, updated.Items, 1)

	_, err = f.orders.RemoveOrderItem(ctx, farmaciaPopular, order.ID, order.Items[0].ID)
	assert.True(t, errors.IsNotFound(err))

	_, err = f.orders.RemoveOrderItem(ctx, drogariaSaoPaulo, order.ID, order.Items[1].ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = f.orders.UpdateOrderStatus(ctx, farmaciaPopular, order.ID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusEnviado})
	require.NoError(t, err)

	_, err = f.orders.RemoveOrderItem(ctx, farmaciaPopular, order.ID, order.Items[1].ID)
	_, ok := errors.AsValidation(err)
	assert.True(t, ok)

	assert.Contains(t, f.publisher.Types(), events.EventTypeOrderItemRemoved)
}

func TestOrderViews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	order := placeSingleOrder(t, f)

	clientOrders, err := f.orders.GetClientOrders(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, clientOrders, 1)
	assert.Len(t, clientOrders[0].Items, 2)

	pharmacyOrders, err := f.orders.GetPharmacyOrders(ctx, farmaciaPopular)
	require.NoError(t, err)
	assert.Len(t, pharmacyOrders, 1)

	_, err = f.orders.GetPharmacyOrders(ctx, f.client.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	got, err := f.orders.GetOrder(ctx, f.client.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.GetOrder(ctx, drogariaSaoPaulo, order.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}
