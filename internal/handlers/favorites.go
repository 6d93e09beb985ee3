package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
)

// ListFavorites handles GET /api/v1/favorites
func (h *Handlers) ListFavorites(c *gin.Context) {
	products, err := h.favoritesService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// ToggleFavorite handles POST /api/v1/favorites/:product_id
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	favorite, err := h.favoritesService.Toggle(c.Request.Context(), middleware.UserID(c), productID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorite": favorite})
}
