package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/cart"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/service"
)

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	logger := logging.NewLoggerV2("pharmacy-service")
	logging.Infof("Starting pharmacy-service on port %d", cfg.Server.Port)

	store, closeStore := initStore(cfg, logger)
	defer closeStore()

	sessions, closeSessions := initSessions(cfg, logger)
	defer closeSessions()

	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.Features.EnableOrderEvents {
		eventPublisher = events.NewKafkaPublisher(cfg.Kafka, logger)
	}
	defer eventPublisher.Close()

	m := metrics.New()

	orderService := service.NewOrderService(store, eventPublisher, m, cfg)
	h := handlers.NewHandlers(
		service.NewUserService(store),
		service.NewCatalogService(store, cfg.Catalog.FeaturedLimit),
		service.NewCartService(sessions, store, orderService, cfg.Cart.DeliveryFee, m),
		orderService,
		service.NewFavoritesService(store, m),
		store,
		cfg,
	)

	srv := server.New(h, cfg, m, logger)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                       cfg.Server.Port,
			"store_backend":              cfg.Catalog.Backend,
			"session_backend":            cfg.Cart.SessionBackend,
			"enable_order_events":        cfg.Features.EnableOrderEvents,
			"enforce_status_transitions": cfg.Features.EnforceStatusTransitions,
			"compensate_failed_checkout": cfg.Features.CompensateFailedCheckout,
		})
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initStore(cfg *config.Config, logger *logging.LoggerV2) (repository.Store, func()) {
	if cfg.Catalog.Backend == config.BackendMemory {
		store := repository.NewMemoryStore()
		if err := repository.Seed(context.Background(), store); err != nil {
			logger.Fatal("Failed to seed memory store", logging.Fields{"error": err.Error()})
		}
		logger.Warn("Using in-memory store; data is lost on restart")
		return store, func() {}
	}

	db, err := repository.OpenDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", logging.Fields{"error": err.Error()})
		}
	}

	return repository.NewPostgresStore(db, logger), func() { db.Close() }
}

func initSessions(cfg *config.Config, logger *logging.LoggerV2) (cart.SessionStore, func()) {
	if cfg.Cart.SessionBackend != config.BackendRedis {
		return cart.NewMemoryStore(), func() {}
	}

	client := cart.NewRedisClient(cfg.Redis)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", logging.Fields{"error": err.Error()})
	}

	return cart.NewRedisStore(client, cfg.Cart.SessionTTL), func() { client.Close() }
}
