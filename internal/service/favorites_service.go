package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

// FavoritesService toggles and lists a user's favorite products. Every
// read goes to the store.
type FavoritesService struct {
	favorites repository.FavoriteRepository
	metrics   *metrics.Metrics
	logger    *logging.LoggerV2
}

func NewFavoritesService(favorites repository.FavoriteRepository, m *metrics.Metrics) *FavoritesService {
	return &FavoritesService{
		favorites: favorites,
		metrics:   m,
		logger:    logging.NewLoggerV2("favorites-service"),
	}
}

// Toggle flips the favorite state and reports the new one.
func (s *FavoritesService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	if userID <= 0 {
		return false, errors.ErrUnauthenticated
	}

	favorite, err := s.favorites.ToggleFavorite(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	state := "removed"
	if favorite {
		state = "added"
	}
	s.metrics.FavoriteToggles.WithLabelValues(state).Inc()

	s.logger.Debug("Favorite toggled", logging.Fields{
		"user_id":    userID,
		"product_id": productID,
		"favorite":   favorite,
	})
	return favorite, nil
}

// List returns the user's favorites. Read failures yield an empty list.
func (s *FavoritesService) List(ctx context.Context, userID int64) ([]*models.Product, error) {
	if userID <= 0 {
		return nil, errors.ErrUnauthenticated
	}

	products, err := s.favorites.GetFavorites(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to load favorites", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return []*models.Product{}, nil
	}
	return products, nil
}
