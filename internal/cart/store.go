package cart

import (
	"context"
	"sync"

	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// SessionStore keeps cart lines per checkout session. A missing session
// loads as an empty cart.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Save(ctx context.Context, sessionID string, items []models.CartItem) error
	Delete(ctx context.Context, sessionID string) error
}

var (
	_ SessionStore = (*MemoryStore)(nil)
	_ SessionStore = (*RedisStore)(nil)
)

// MemoryStore keeps carts in process memory; they are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]models.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]models.CartItem)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[sessionID]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, items []models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		delete(s.carts, sessionID)
		return nil
	}
	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	s.carts[sessionID] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
