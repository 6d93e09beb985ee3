package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
)

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// GetCart handles GET /api/v1/carts/:session_id
func (h *Handlers) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ClearCart handles DELETE /api/v1/carts/:session_id
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), c.Param("session_id")); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddCartItem handles POST /api/v1/carts/:session_id/items
func (h *Handlers) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.cartService.AddItem(c.Request.Context(), c.Param("session_id"), req.ProductID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateCartItem handles PATCH /api/v1/carts/:session_id/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, err := h.cartService.UpdateQuantity(c.Request.Context(), c.Param("session_id"), productID, req.Delta)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RemoveCartItem handles DELETE /api/v1/carts/:session_id/items/:product_id
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return
	}

	view, err := h.cartService.RemoveItem(c.Request.Context(), c.Param("session_id"), productID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Checkout handles POST /api/v1/carts/:session_id/checkout
func (h *Handlers) Checkout(c *gin.Context) {
	result, err := h.cartService.Checkout(c.Request.Context(), c.Param("session_id"), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
