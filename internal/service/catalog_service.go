package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

// CatalogService serves product search and pharmacy-side product
// management. Reads degrade to empty results; writes propagate errors.
type CatalogService struct {
	store         repository.Store
	featuredLimit int
	logger        *logging.LoggerV2
}

func NewCatalogService(store repository.Store, featuredLimit int) *CatalogService {
	return &CatalogService{
		store:         store,
		featuredLimit: featuredLimit,
		logger:        logging.NewLoggerV2("catalog-service"),
	}
}

// Search filters the catalog and marks the caller's favorites.
func (s *CatalogService) Search(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if err := ValidateProductFilter(filter); err != nil {
		return nil, err
	}

	products, err := s.store.SearchProducts(ctx, filter)
	if err != nil {
		s.logger.Error("Product search failed", logging.Fields{
			"query": filter.Query,
			"error": err.Error(),
		})
		return []*models.Product{}, nil
	}
	return products, nil
}

func (s *CatalogService) Featured(ctx context.Context) []*models.Product {
	products, err := s.store.GetFeaturedProducts(ctx, s.featuredLimit)
	if err != nil {
		s.logger.Error("Failed to load featured products", logging.Fields{"error": err.Error()})
		return []*models.Product{}
	}
	return products
}

func (s *CatalogService) Categories(ctx context.Context) []string {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", logging.Fields{"error": err.Error()})
		return []string{}
	}
	return categories
}

func (s *CatalogService) PharmacyProducts(ctx context.Context, pharmacyID int64) []*models.Product {
	products, err := s.store.GetPharmacyProducts(ctx, pharmacyID)
	if err != nil {
		s.logger.Error("Failed to load pharmacy products", logging.Fields{
			"pharmacy_id": pharmacyID,
			"error":       err.Error(),
		})
		return []*models.Product{}
	}
	return products
}

// OwnProducts lists the acting pharmacy's products.
func (s *CatalogService) OwnProducts(ctx context.Context, actorID int64) ([]*models.Product, error) {
	if _, err := requirePharmacy(ctx, s.store, actorID); err != nil {
		return nil, err
	}
	return s.PharmacyProducts(ctx, actorID), nil
}

func (s *CatalogService) AddProduct(ctx context.Context, actorID int64, in *models.ProductInput) (*models.Product, error) {
	if _, err := requirePharmacy(ctx, s.store, actorID); err != nil {
		return nil, err
	}
	if err := ValidateProductInput(in); err != nil {
		return nil, err
	}

	product, err := s.store.AddProduct(ctx, actorID, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product added", logging.Fields{
		"product_id":  product.ID,
		"pharmacy_id": actorID,
	})
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actorID, productID int64, in *models.ProductInput) (*models.Product, error) {
	if err := s.ownProduct(ctx, actorID, productID); err != nil {
		return nil, err
	}
	if err := ValidateProductInput(in); err != nil {
		return nil, err
	}
	return s.store.UpdateProduct(ctx, productID, in)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actorID, productID int64) error {
	if err := s.ownProduct(ctx, actorID, productID); err != nil {
		return err
	}

	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		return err
	}

	s.logger.Info("Product deleted", logging.Fields{
		"product_id":  productID,
		"pharmacy_id": actorID,
	})
	return nil
}

func (s *CatalogService) ownProduct(ctx context.Context, actorID, productID int64) error {
	if _, err := requirePharmacy(ctx, s.store, actorID); err != nil {
		return err
	}

	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.PharmacyID != actorID {
		return errors.ErrForbidden
	}
	return nil
}
