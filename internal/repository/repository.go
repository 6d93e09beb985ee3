package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// Ensure both backends implement Store.
var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// UserRepository manages clients and pharmacies.
type UserRepository interface {
	// GetUserByEmail returns errors.ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, name, email string, userType models.UserType) (*models.User, error)

	// FirstPharmacyID returns the lowest-id pharmacy user.
	FirstPharmacyID(ctx context.Context) (int64, error)

	// RecordCheckout bumps the user's order count and accumulated savings.
	RecordCheckout(ctx context.Context, userID int64, orders int, saved decimal.Decimal) error
}

// ProductRepository manages the catalog.
type ProductRepository interface {
	SearchProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]*models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetPharmacyProducts(ctx context.Context, pharmacyID int64) ([]*models.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	AddProduct(ctx context.Context, pharmacyID int64, in *models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in *models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderRepository persists orders and their snapshotted items.
type OrderRepository interface {
	// CreateOrderGroup inserts one order and all of its items as a single
	// unit of work.
	CreateOrderGroup(ctx context.Context, userID int64, group *models.OrderGroup) (*models.Order, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetClientOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	GetPharmacyOrders(ctx context.Context, pharmacyID int64) ([]*models.Order, error)

	// RemoveOrderItem deletes the item and decrements the order total by
	// the item's stored price×quantity. It returns the removed item.
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*models.OrderItem, error)

	// UpdateOrderStatus sets any status; transition rules live above.
	UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

// FavoriteRepository manages the user↔product favorite relation.
type FavoriteRepository interface {
	// ToggleFavorite returns true when the pair is favorited afterwards.
	ToggleFavorite(ctx context.Context, userID, productID int64) (bool, error)
	GetFavorites(ctx context.Context, userID int64) ([]*models.Product, error)
}

// Store is the catalog store collaborator consumed by the services.
type Store interface {
	UserRepository
	ProductRepository
	OrderRepository
	FavoriteRepository

	Ping(ctx context.Context) error
}
