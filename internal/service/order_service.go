package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

const compensationReason = "checkout failed before every pharmacy order was created"

// OrderService handles order business logic.
type OrderService struct {
	store          repository.Store
	eventPublisher events.Publisher
	metrics        *metrics.Metrics
	config         *config.Config
	logger         *logging.LoggerV2
}

// NewOrderService creates a new order service.
func NewOrderService(
	store repository.Store,
	eventPublisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		store:          store,
		eventPublisher: eventPublisher,
		metrics:        m,
		config:         cfg,
		logger:         logging.NewLoggerV2("order-service"),
	}
}

// PlaceOrder turns cart lines into one order per pharmacy. Groups are
// created sequentially, each in its own unit of work. When a group fails
// after others were committed, the committed orders are cancelled (if
// compensation is enabled) and a PartialOrderError is returned.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, items []models.CartItem) (*models.CheckoutResult, error) {
	s.logger.Info("Placing order", logging.Fields{
		"user_id":    userID,
		"item_count": len(items),
	})

	if len(items) == 0 {
		s.metrics.Checkouts.WithLabelValues("rejected").Inc()
		return nil, errors.ErrEmptyCart
	}

	if userID <= 0 {
		s.metrics.Checkouts.WithLabelValues("rejected").Inc()
		return nil, errors.ErrUnauthenticated
	}

	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		s.metrics.Checkouts.WithLabelValues("rejected").Inc()
		if errors.IsNotFound(err) {
			return nil, errors.ErrUnauthenticated
		}
		return nil, err
	}

	if err := ValidateCartItems(items); err != nil {
		s.metrics.Checkouts.WithLabelValues("rejected").Inc()
		return nil, err
	}

	var defaultPharmacyID int64
	if needsDefaultPharmacy(items) {
		id, err := s.store.FirstPharmacyID(ctx)
		if err != nil {
			s.logger.Error("Failed to resolve default pharmacy", logging.Fields{
				"user_id": userID,
				"error":   err.Error(),
			})
			s.metrics.Checkouts.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("resolve default pharmacy: %w", err)
		}
		defaultPharmacyID = id
	}

	groups := ComposeOrderGroups(items, defaultPharmacyID)
	result := &models.CheckoutResult{
		OrderIDs: make([]int64, 0, len(groups)),
		Orders:   make([]*models.Order, 0, len(groups)),
	}

	for i := range groups {
		order, err := s.store.CreateOrderGroup(ctx, userID, &groups[i])
		if err != nil {
			s.logger.Error("Failed to create pharmacy order", logging.Fields{
				"user_id":     userID,
				"pharmacy_id": groups[i].PharmacyID,
				"created":     len(result.OrderIDs),
				"error":       err.Error(),
			})

			if len(result.Orders) == 0 {
				s.metrics.Checkouts.WithLabelValues("failed").Inc()
				return nil, fmt.Errorf("create order for pharmacy %d: %w", groups[i].PharmacyID, err)
			}

			compensated := false
			if s.config.Features.CompensateFailedCheckout {
				compensated = s.compensate(ctx, result.Orders)
			}
			s.metrics.Checkouts.WithLabelValues("partial").Inc()
			return nil, &errors.PartialOrderError{
				CreatedOrderIDs: result.OrderIDs,
				Compensated:     compensated,
				Err:             err,
			}
		}

		s.metrics.OrdersCreated.Inc()
		result.OrderIDs = append(result.OrderIDs, order.ID)
		result.Orders = append(result.Orders, order)
	}

	// Profile counters are best effort; the orders already exist.
	if err := s.store.RecordCheckout(ctx, userID, len(result.Orders), CheckoutSavings(items)); err != nil {
		s.logger.Error("Failed to record checkout counters", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	if s.config.Features.EnableOrderEvents {
		for _, order := range result.Orders {
			if err := s.eventPublisher.PublishOrderCreated(ctx, order); err != nil {
				// Log but don't fail
				s.logger.Error("Failed to publish order created event", logging.Fields{
					"order_id": order.ID,
					"error":    err.Error(),
				})
			}
		}
	}

	s.metrics.Checkouts.WithLabelValues("success").Inc()
	s.logger.Info("Order placed successfully", logging.Fields{
		"user_id":   userID,
		"order_ids": result.OrderIDs,
	})

	return result, nil
}

// compensate cancels orders committed by a failed checkout. It reports
// whether every order was cancelled.
func (s *OrderService) compensate(ctx context.Context, orders []*models.Order) bool {
	ok := true
	for _, order := range orders {
		previousStatus := order.Status
		if err := s.store.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelado); err != nil {
			ok = false
			s.logger.Error("Failed to compensate order", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
			continue
		}
		order.Status = models.OrderStatusCancelado
		s.metrics.StatusChanges.WithLabelValues(string(previousStatus), string(order.Status)).Inc()

		s.logger.Warn("Order compensated", logging.Fields{
			"order_id":    order.ID,
			"pharmacy_id": order.PharmacyID,
		})

		if s.config.Features.EnableOrderEvents {
			if err := s.eventPublisher.PublishOrderCompensated(ctx, order, compensationReason); err != nil {
				s.logger.Error("Failed to publish order compensated event", logging.Fields{
					"order_id": order.ID,
					"error":    err.Error(),
				})
			}
		}
	}
	return ok
}

// GetOrder returns an order visible to the actor: its client or its
// pharmacy.
func (s *OrderService) GetOrder(ctx context.Context, actorID, orderID int64) (*models.Order, error) {
	s.logger.Debug("Getting order", logging.Fields{"order_id": orderID})

	if actorID <= 0 {
		return nil, errors.ErrUnauthenticated
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actorID && order.PharmacyID != actorID {
		return nil, errors.ErrForbidden
	}
	return order, nil
}

// GetClientOrders lists a client's orders, newest first. Read failures
// yield an empty list.
func (s *OrderService) GetClientOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	if userID <= 0 {
		return nil, errors.ErrUnauthenticated
	}

	orders, err := s.store.GetClientOrders(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list client orders", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return []*models.Order{}, nil
	}
	return orders, nil
}

// GetPharmacyOrders lists the orders addressed to a pharmacy. Read failures
// yield an empty list.
func (s *OrderService) GetPharmacyOrders(ctx context.Context, pharmacyID int64) ([]*models.Order, error) {
	if _, err := requirePharmacy(ctx, s.store, pharmacyID); err != nil {
		return nil, err
	}

	orders, err := s.store.GetPharmacyOrders(ctx, pharmacyID)
	if err != nil {
		s.logger.Error("Failed to list pharmacy orders", logging.Fields{
			"pharmacy_id": pharmacyID,
			"error":       err.Error(),
		})
		return []*models.Order{}, nil
	}
	return orders, nil
}

// UpdateOrderStatus moves an order owned by the acting pharmacy to a new
// status.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actorID, orderID int64, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   orderID,
		"actor_id":   actorID,
		"new_status": req.Status,
	})

	if err := ValidateUpdateOrderStatusRequest(req); err != nil {
		return nil, err
	}

	order, err := s.ownedOrder(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnforceStatusTransitions && !models.CanTransition(order.Status, req.Status) {
		return nil, errors.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s",
			order.Status,
			req.Status,
		))
	}

	previousStatus := order.Status

	if err := s.store.UpdateOrderStatus(ctx, orderID, req.Status); err != nil {
		return nil, err
	}
	order.Status = req.Status
	s.metrics.StatusChanges.WithLabelValues(string(previousStatus), string(order.Status)).Inc()

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, previousStatus); err != nil {
			s.logger.Error("Failed to publish status change event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	return order, nil
}

// RemoveOrderItem drops an item from an order owned by the acting pharmacy
// and returns the order with its decremented total.
func (s *OrderService) RemoveOrderItem(ctx context.Context, actorID, orderID, itemID int64) (*models.Order, error) {
	s.logger.Info("Removing order item", logging.Fields{
		"order_id": orderID,
		"item_id":  itemID,
		"actor_id": actorID,
	})

	order, err := s.ownedOrder(ctx, actorID, orderID)
	if err != nil {
		return nil, err
	}

	if s.config.Features.RestrictItemRemoval && order.Status != models.OrderStatusPreparando {
		return nil, errors.NewValidationError("status", fmt.Sprintf(
			"items can only be removed while the order is %s",
			models.OrderStatusPreparando,
		))
	}

	if _, ok := order.FindItem(itemID); !ok {
		return nil, errors.ErrNotFound
	}

	removed, err := s.store.RemoveOrderItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderItemRemoved(ctx, updated, removed); err != nil {
			s.logger.Error("Failed to publish item removed event", logging.Fields{
				"order_id": orderID,
				"error":    err.Error(),
			})
		}
	}

	return updated, nil
}

func (s *OrderService) ownedOrder(ctx context.Context, actorID, orderID int64) (*models.Order, error) {
	if actorID <= 0 {
		return nil, errors.ErrUnauthenticated
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PharmacyID != actorID {
		return nil, errors.ErrForbidden
	}
	return order, nil
}

// requirePharmacy resolves the actor and checks it is a pharmacy.
func requirePharmacy(ctx context.Context, users repository.UserRepository, actorID int64) (*models.User, error) {
	if actorID <= 0 {
		return nil, errors.ErrUnauthenticated
	}

	user, err := users.GetUserByID(ctx, actorID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsPharmacy() {
		return nil, errors.ErrForbidden
	}
	return user, nil
}
