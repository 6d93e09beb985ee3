package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

// Seeded ids: pharmacies 1..4, products 1..8 in seed order.
const (
	farmaciaPopular  int64 = 1
	drogariaSaoPaulo int64 = 2
	farmaciaPacheco  int64 = 3

	paracetamolID int64 = 1
	vitaminaCID   int64 = 3
	shampooID     int64 = 6
)

var errStoreDown = stderrors.New("store unavailable")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig() *config.Config {
	return &config.Config{
		Cart: config.CartConfig{DeliveryFee: dec("5.00")},
		Catalog: config.CatalogConfig{
			FeaturedLimit: 10,
		},
		Features: config.FeatureFlags{
			EnableOrderEvents:        true,
			EnforceStatusTransitions: true,
			CompensateFailedCheckout: true,
			RestrictItemRemoval:      true,
		},
	}
}

// failingStore fails the Nth CreateOrderGroup call.
type failingStore struct {
	*repository.MemoryStore
	failOnCall int
	calls      int
}

func (f *failingStore) CreateOrderGroup(ctx context.Context, userID int64, group *models.OrderGroup) (*models.Order, error) {
	f.calls++
	if f.calls == f.failOnCall {
		return nil, errStoreDown
	}
	return f.MemoryStore.CreateOrderGroup(ctx, userID, group)
}

type fixture struct {
	store     repository.Store
	memory    *repository.MemoryStore
	publisher *events.MockEventPublisher
	metrics   *metrics.Metrics
	config    *config.Config
	sessions  *cart.MemoryStore

	orders    *OrderService
	carts     *CartService
	catalog   *CatalogService
	favorites *FavoritesService
	users     *UserService

	client *models.User
}

func newFixture(t *testing.T, wrap func(*repository.MemoryStore) repository.Store) *fixture {
	t.Helper()
	ctx := context.Background()

	memory := repository.NewMemoryStore()
	require.NoError(t, repository.Seed(ctx, memory))

	var store repository.Store = memory
	if wrap != nil {
		store = wrap(memory)
	}

	f := &fixture{
		store:     store,
		memory:    memory,
		publisher: events.NewMockEventPublisher(),
		metrics:   metrics.New(),
		config:    testConfig(),
		sessions:  cart.NewMemoryStore(),
	}
	f.orders = NewOrderService(store, f.publisher, f.metrics, f.config)
	f.carts = NewCartService(f.sessions, store, f.orders, f.config.Cart.DeliveryFee, f.metrics)
	f.catalog = NewCatalogService(store, f.config.Catalog.FeaturedLimit)
	f.favorites = NewFavoritesService(store, f.metrics)
	f.users = NewUserService(store)

	client, err := f.users.SignIn(ctx, &models.SignInRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	f.client = client
	return f
}

func (f *fixture) cartItem(t *testing.T, productID int64, quantity int) models.CartItem {
	t.Helper()
	p, err := f.memory.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return models.CartItem{
		ProductID:    p.ID,
		Name:         p.Name,
		PharmacyID:   p.PharmacyID,
		PharmacyName: p.PharmacyName,
		Price:        p.Price,
		OldPrice:     p.OldPrice,
		Quantity:     quantity,
	}
}
