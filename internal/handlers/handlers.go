package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/service"
)

// Handlers holds all HTTP handlers for the pharmacy service.
type Handlers struct {
	userService      *service.UserService
	catalogService   *service.CatalogService
	cartService      *service.CartService
	orderService     *service.OrderService
	favoritesService *service.FavoritesService
	store            repository.Store
	config           *config.Config
	logger           *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	userService *service.UserService,
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	favoritesService *service.FavoritesService,
	store repository.Store,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		userService:      userService,
		catalogService:   catalogService,
		cartService:      cartService,
		orderService:     orderService,
		favoritesService: favoritesService,
		store:            store,
		config:           cfg,
		logger:           logging.NewLoggerV2("handlers"),
	}
}

// paramID parses a positive int64 path parameter, writing a 400 when it
// is malformed.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	if partial, ok := errors.AsPartialOrder(err); ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "checkout partially failed",
			"created_order_ids": partial.CreatedOrderIDs,
			"compensated":       partial.Compensated,
		})
		return
	}

	if validationErr, ok := errors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
		return
	}

	switch {
	case errors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errors.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": errors.ErrEmptyCart.Error()})
	case errors.Is(err, errors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errors.ErrUnauthenticated.Error()})
	case errors.Is(err, errors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errors.ErrForbidden.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
