package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

// CartService loads a session's cart, applies one operation and saves it
// back. A session is expected to have a single writer at a time.
type CartService struct {
	sessions    cart.SessionStore
	products    repository.ProductRepository
	orders      *OrderService
	deliveryFee decimal.Decimal
	metrics     *metrics.Metrics
	logger      *logging.LoggerV2
}

func NewCartService(
	sessions cart.SessionStore,
	products repository.ProductRepository,
	orders *OrderService,
	deliveryFee decimal.Decimal,
	m *metrics.Metrics,
) *CartService {
	return &CartService{
		sessions:    sessions,
		products:    products,
		orders:      orders,
		deliveryFee: deliveryFee,
		metrics:     m,
		logger:      logging.NewLoggerV2("cart-service"),
	}
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	items, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load cart", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return cart.New(s.deliveryFee, items...), nil
}

func (s *CartService) save(ctx context.Context, sessionID, operation string, c *cart.Cart) (*models.CartView, error) {
	if err := s.sessions.Save(ctx, sessionID, c.Items()); err != nil {
		s.logger.Error("Failed to save cart", logging.Fields{
			"session_id": sessionID,
			"operation":  operation,
			"error":      err.Error(),
		})
		return nil, err
	}
	s.metrics.CartOperations.WithLabelValues(operation).Inc()
	return c.View(sessionID), nil
}

func (s *CartService) GetCart(ctx context.Context, sessionID string) (*models.CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.View(sessionID), nil
}

// AddItem adds one unit of a catalog product to the cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64) (*models.CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	c.AddItem(product)
	return s.save(ctx, sessionID, "add", c)
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*models.CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID)
	return s.save(ctx, sessionID, "remove", c)
}

// UpdateQuantity applies a +1/-1 delta to a line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, delta int) (*models.CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := c.UpdateQuantity(productID, delta); err != nil {
		return nil, err
	}
	return s.save(ctx, sessionID, "update_quantity", c)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.metrics.CartOperations.WithLabelValues("clear").Inc()
	return nil
}

// Checkout places the cart's orders for userID. The cart is cleared only
// when every pharmacy order was created.
func (s *CartService) Checkout(ctx context.Context, sessionID string, userID int64) (*models.CheckoutResult, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.orders.PlaceOrder(ctx, userID, c.Items())
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("Failed to clear cart after checkout", logging.Fields{
			"session_id": sessionID,
			"order_ids":  result.OrderIDs,
			"error":      err.Error(),
		})
	}
	s.metrics.CartOperations.WithLabelValues("checkout").Inc()

	return result, nil
}
