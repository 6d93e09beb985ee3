package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	metrics    *metrics.Metrics
	logger     *logging.LoggerV2
	httpServer *http.Server
}

func New(h *handlers.Handlers, cfg *config.Config, m *metrics.Metrics, logger *logging.LoggerV2) *Server {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.Identity(),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  m,
		logger:   logger,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		users := v1.Group("/users")
		users.POST("/sign-in", s.handlers.SignIn)
		users.GET("/me", s.handlers.Me)

		products := v1.Group("/products")
		products.GET("/search", s.handlers.SearchProducts)
		products.GET("/featured", s.handlers.FeaturedProducts)
		products.GET("/categories", s.handlers.Categories)

		v1.GET("/pharmacies/:id/products", s.handlers.PharmacyProducts)

		carts := v1.Group("/carts/:session_id")
		carts.GET("", s.handlers.GetCart)
		carts.DELETE("", s.handlers.ClearCart)
		carts.POST("/items", s.handlers.AddCartItem)
		carts.PATCH("/items/:product_id", s.handlers.UpdateCartItem)
		carts.DELETE("/items/:product_id", s.handlers.RemoveCartItem)
		carts.POST("/checkout", s.handlers.Checkout)

		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)

		v1.GET("/favorites", s.handlers.ListFavorites)
		v1.POST("/favorites/:product_id", s.handlers.ToggleFavorite)

		pharmacy := v1.Group("/pharmacy")
		pharmacy.GET("/products", s.handlers.OwnProducts)
		pharmacy.POST("/products", s.handlers.AddProduct)
		pharmacy.PUT("/products/:id", s.handlers.UpdateProduct)
		pharmacy.DELETE("/products/:id", s.handlers.DeleteProduct)
		pharmacy.GET("/orders", s.handlers.PharmacyOrders)
		pharmacy.PATCH("/orders/:id/status", s.handlers.UpdateOrderStatus)
		pharmacy.DELETE("/orders/:id/items/:item_id", s.handlers.RemoveOrderItem)
	}
}

// Handler exposes the routed engine, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Listening", logging.Fields{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
