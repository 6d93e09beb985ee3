package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

const (
	cartKeyPrefix     = "cart:"
	defaultSessionTTL = 2 * time.Hour
)

// RedisStore keeps each session's cart as a JSON snapshot with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisClient builds a client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("cart-store"),
	}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	key := cartKeyPrefix + sessionID

	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		s.logger.Debug("Cart session miss", logging.Fields{"session_id": sessionID})
		return []models.CartItem{}, nil
	}
	if err != nil {
		s.logger.Error("Cart load error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}

	// Sliding expiry: reading a cart keeps the session alive.
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		s.logger.Warn("Cart expiry refresh failed", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	key := cartKeyPrefix + sessionID

	if len(items) == 0 {
		return s.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Error("Cart save error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Debug("Cart saved", logging.Fields{
		"session_id": sessionID,
		"lines":      len(items),
		"ttl":        s.ttl.String(),
	})
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+sessionID).Err(); err != nil {
		s.logger.Error("Cart delete error", logging.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}
