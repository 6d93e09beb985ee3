package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

// OwnProducts handles GET /api/v1/pharmacy/products
func (h *Handlers) OwnProducts(c *gin.Context) {
	products, err := h.catalogService.OwnProducts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// AddProduct handles POST /api/v1/pharmacy/products
func (h *Handlers) AddProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Error("Failed to bind request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalogService.AddProduct(c.Request.Context(), middleware.UserID(c), &in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/pharmacy/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), middleware.UserID(c), productID, &in)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/pharmacy/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), middleware.UserID(c), productID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PharmacyOrders handles GET /api/v1/pharmacy/orders
func (h *Handlers) PharmacyOrders(c *gin.Context) {
	orders, err := h.orderService.GetPharmacyOrders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

// UpdateOrderStatus handles PATCH /api/v1/pharmacy/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), middleware.UserID(c), orderID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// RemoveOrderItem handles DELETE /api/v1/pharmacy/orders/:id/items/:item_id
func (h *Handlers) RemoveOrderItem(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveOrderItem(c.Request.Context(), middleware.UserID(c), orderID, itemID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
