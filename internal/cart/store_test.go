package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

type SessionStoreTestSuite struct {
	suite.Suite
	newStore func() SessionStore
	store    SessionStore
}

func (s *SessionStoreTestSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *SessionStoreTestSuite) TestLoadMissingSessionIsEmpty() {
	items, err := s.store.Load(context.Background(), "missing")
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *SessionStoreTestSuite) TestSaveAndLoad() {
	ctx := context.Background()
	in := []models.CartItem{
		{ProductID: 1, Name: "Paracetamol 500mg", PharmacyID: 10, Price: decimal.RequireFromString("8.90"), Quantity: 2},
		{ProductID: 2, Name: "Vitamina C 1g", PharmacyID: 20, Price: decimal.RequireFromString("15.90"), Quantity: 1},
	}

	s.Require().NoError(s.store.Save(ctx, "sess", in))

	got, err := s.store.Load(ctx, "sess")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(int64(1), got[0].ProductID)
	s.Equal(2, got[0].Quantity)
	s.True(got[0].Price.Equal(decimal.RequireFromString("8.90")))
	s.Equal(int64(20), got[1].PharmacyID)
}

func (s *SessionStoreTestSuite) TestSessionsAreIsolated() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "a", []models.CartItem{{ProductID: 1, Quantity: 1}}))

	got, err := s.store.Load(ctx, "b")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *SessionStoreTestSuite) TestDeleteAndEmptySave() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "sess", []models.CartItem{{ProductID: 1, Quantity: 1}}))
	s.Require().NoError(s.store.Delete(ctx, "sess"))

	got, err := s.store.Load(ctx, "sess")
	s.Require().NoError(err)
	s.Empty(got)

	s.Require().NoError(s.store.Save(ctx, "sess", []models.CartItem{{ProductID: 1, Quantity: 1}}))
	s.Require().NoError(s.store.Save(ctx, "sess", nil))
	got, err = s.store.Load(ctx, "sess")
	s.Require().NoError(err)
	s.Empty(got)
}

func TestMemorySessionStore(t *testing.T) {
	suite.Run(t, &SessionStoreTestSuite{newStore: func() SessionStore { return NewMemoryStore() }})
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	suite.Run(t, &SessionStoreTestSuite{newStore: func() SessionStore {
		mr.FlushAll()
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return NewRedisStore(client, time.Hour)
	}})
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess", []models.CartItem{{ProductID: 1, Quantity: 1}}))
	assert.Equal(t, 10*time.Minute, mr.TTL("cart:sess"))

	mr.FastForward(11 * time.Minute)

	got, err := store.Load(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStore_LoadRefreshesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sess", []models.CartItem{{ProductID: 1, Quantity: 1}}))
	mr.FastForward(8 * time.Minute)

	_, err := store.Load(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL("cart:sess"))
}
