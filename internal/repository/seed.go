package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

type seedProduct struct {
	pharmacy string
	name     string
	category string
	price    string
	oldPrice string
}

var seedPharmacies = []struct {
	name  string
	email string
}{
	{"Farmácia Popular", "contato@farmaciapopular.com.br"},
	{"Drogaria São Paulo", "contato@drogariasaopaulo.com.br"},
	{"Farmácia Pacheco", "contato@farmaciapacheco.com.br"},
	{"Drogaria Raia", "contato@drogariaraia.com.br"},
}

var seedProducts = []seedProduct{
	{"contato@farmaciapopular.com.br", "Paracetamol 500mg", "Medicamentos", "8.90", "12.90"},
	{"contato@drogariasaopaulo.com.br", "Dipirona 500mg", "Medicamentos", "6.50", ""},
	{"contato@farmaciapacheco.com.br", "Vitamina C 1g", "Saúde", "15.90", "19.90"},
	{"contato@drogariaraia.com.br", "Protetor Solar FPS 50", "Beleza", "45.90", "59.90"},
	{"contato@farmaciapopular.com.br", "Fralda Pampers G", "Bebê", "39.90", ""},
	{"contato@drogariasaopaulo.com.br", "Shampoo Anticaspa", "Higiene", "22.50", ""},
	{"contato@farmaciapacheco.com.br", "Termômetro Digital", "Equipamentos", "29.90", "35.00"},
	{"contato@drogariaraia.com.br", "Dorflex 36 cpr", "Medicamentos", "18.90", "24.90"},
}

// Seed loads the demo pharmacies and catalog through the Store API. It
// mirrors the 0002 migration and is used by the memory backend.
func Seed(ctx context.Context, store Store) error {
	pharmacyIDs := make(map[string]int64, len(seedPharmacies))
	for _, ph := range seedPharmacies {
		u, err := store.GetUserByEmail(ctx, ph.email)
		if err == nil {
			pharmacyIDs[ph.email] = u.ID
			continue
		}
		u, err = store.CreateUser(ctx, ph.name, ph.email, models.UserTypePharmacy)
		if err != nil {
			return err
		}
		pharmacyIDs[ph.email] = u.ID
	}

	existing, err := store.SearchProducts(ctx, &models.ProductFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, sp := range seedProducts {
		in := &models.ProductInput{
			Name:     sp.name,
			Category: sp.category,
			Price:    decimal.RequireFromString(sp.price),
		}
		if sp.oldPrice != "" {
			in.OldPrice = decimal.NewNullDecimal(decimal.RequireFromString(sp.oldPrice))
		}
		if _, err := store.AddProduct(ctx, pharmacyIDs[sp.pharmacy], in); err != nil {
			return err
		}
	}
	return nil
}
