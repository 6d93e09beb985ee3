package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserType distinguishes buyers from product-owning pharmacies.
type UserType string

const (
	UserTypeClient   UserType = "client"
	UserTypePharmacy UserType = "pharmacy"
)

func (t UserType) IsValid() bool {
	return t == UserTypeClient || t == UserTypePharmacy
}

// User is either a client or a pharmacy. The type is fixed at creation.
// Favoritos is counted at read time.
type User struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Type       UserType        `json:"type"`
	Pedidos    int             `json:"pedidos"`
	Economizou decimal.Decimal `json:"economizou"`
	Favoritos  int             `json:"favoritos"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (u *User) IsPharmacy() bool {
	return u.Type == UserTypePharmacy
}

// Product is owned by exactly one pharmacy. PharmacyName and IsFavorite are
// filled at read time.
type Product struct {
	ID           int64               `json:"id"`
	PharmacyID   int64               `json:"pharmacy_id"`
	PharmacyName string              `json:"pharmacy_name,omitempty"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	Price        decimal.Decimal     `json:"price"`
	OldPrice     decimal.NullDecimal `json:"old_price"`
	Image        string              `json:"image,omitempty"`
	IsFavorite   bool                `json:"is_favorite"`
}

// Discount is old_price - price when the product is on promotion, else zero.
func (p *Product) Discount() decimal.Decimal {
	if !p.OldPrice.Valid || !p.OldPrice.Decimal.GreaterThan(p.Price) {
		return decimal.Zero
	}
	return p.OldPrice.Decimal.Sub(p.Price)
}

// ProductFilter drives catalog search. A zero MaxPrice means no upper bound.
type ProductFilter struct {
	Query    string
	Category string
	MaxPrice decimal.Decimal
	UserID   int64
}

// ProductInput is the pharmacy-side create/update payload.
type ProductInput struct {
	Name     string              `json:"name"`
	Category string              `json:"category"`
	Price    decimal.Decimal     `json:"price"`
	OldPrice decimal.NullDecimal `json:"old_price"`
	Image    string              `json:"image"`
}

// SignInRequest identifies a user by email, creating it on first sign-in.
type SignInRequest struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}
