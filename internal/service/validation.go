package service

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

const (
	maxSessionIDLength = 128
	maxProductNameLen  = 200
	maxCategoryLen     = 100
	maxSearchQueryLen  = 200
	maxUserNameLen     = 120
)

// ValidateCartItems checks every line before an order is composed.
func ValidateCartItems(items []models.CartItem) error {
	for i, item := range items {
		if err := validateCartItem(&item, i); err != nil {
			return err
		}
	}
	return nil
}

func validateCartItem(item *models.CartItem, index int) error {
	field := fmt.Sprintf("items[%d]", index)

	if item.ProductID <= 0 {
		return errors.NewValidationError(field, "product ID is required for item")
	}

	if item.Quantity < 1 {
		return errors.NewValidationError(field, "quantity must be positive")
	}

	if !item.Price.IsPositive() {
		return errors.NewValidationError(field, "price must be positive")
	}

	if item.PharmacyID < 0 {
		return errors.NewValidationError(field, "invalid pharmacy ID")
	}

	return nil
}

// ValidateUpdateOrderStatusRequest validates a status update request.
func ValidateUpdateOrderStatusRequest(req *models.UpdateOrderStatusRequest) error {
	if req.Status == "" {
		return errors.NewValidationError("status", "status is required")
	}

	if !req.Status.IsValid() {
		return errors.NewValidationError("status", "invalid order status")
	}

	return nil
}

// ValidateProductInput validates a pharmacy's product payload.
func ValidateProductInput(in *models.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Image = strings.TrimSpace(in.Image)

	if in.Name == "" {
		return errors.NewValidationError("name", "name is required")
	}

	if len(in.Name) > maxProductNameLen {
		return errors.NewValidationError("name", fmt.Sprintf("name too long (max %d characters)", maxProductNameLen))
	}

	if in.Category == "" {
		return errors.NewValidationError("category", "category is required")
	}

	if len(in.Category) > maxCategoryLen {
		return errors.NewValidationError("category", fmt.Sprintf("category too long (max %d characters)", maxCategoryLen))
	}

	if !in.Price.IsPositive() {
		return errors.NewValidationError("price", "price must be positive")
	}

	if in.OldPrice.Valid && !in.OldPrice.Decimal.IsPositive() {
		return errors.NewValidationError("old_price", "old price must be positive when present")
	}

	return nil
}

// ValidateProductFilter normalizes and validates a search filter.
func ValidateProductFilter(filter *models.ProductFilter) error {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)

	if len(filter.Query) > maxSearchQueryLen {
		return errors.NewValidationError("q", fmt.Sprintf("query too long (max %d characters)", maxSearchQueryLen))
	}

	// Only a positive bound filters.
	if !filter.MaxPrice.IsPositive() {
		filter.MaxPrice = decimal.Zero
	}

	return nil
}

// ValidateSignInRequest validates and normalizes a sign-in payload. An
// empty type defaults to client.
func ValidateSignInRequest(req *models.SignInRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return errors.NewValidationError("name", "name is required")
	}

	if len(req.Name) > maxUserNameLen {
		return errors.NewValidationError("name", fmt.Sprintf("name too long (max %d characters)", maxUserNameLen))
	}

	if req.Email == "" {
		return errors.NewValidationError("email", "email is required")
	}

	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		return errors.NewValidationError("email", "invalid email address")
	}
	req.Email = addr.Address

	if req.Type == "" {
		req.Type = models.UserTypeClient
	}

	if !req.Type.IsValid() {
		return errors.NewValidationError("type", "type must be client or pharmacy")
	}

	return nil
}

// ValidateSessionID validates a cart session identifier.
func ValidateSessionID(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.NewValidationError("session_id", "session ID is required")
	}

	if len(sessionID) > maxSessionIDLength {
		return errors.NewValidationError("session_id", fmt.Sprintf("session ID too long (max %d characters)", maxSessionIDLength))
	}

	return nil
}
