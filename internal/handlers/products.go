package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// SearchProducts handles GET /api/v1/products/search
func (h *Handlers) SearchProducts(c *gin.Context) {
	filter := &models.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		UserID:   middleware.UserID(c),
	}

	if raw := strings.TrimSpace(c.Query("max_price")); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		filter.MaxPrice = maxPrice
	}

	products, err := h.catalogService.Search(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

// FeaturedProducts handles GET /api/v1/products/featured
func (h *Handlers) FeaturedProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"products": h.catalogService.Featured(c.Request.Context()),
	})
}

// Categories handles GET /api/v1/products/categories
func (h *Handlers) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": h.catalogService.Categories(c.Request.Context()),
	})
}

// PharmacyProducts handles GET /api/v1/pharmacies/:id/products
func (h *Handlers) PharmacyProducts(c *gin.Context) {
	pharmacyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.catalogService.PharmacyProducts(c.Request.Context(), pharmacyID),
	})
}
