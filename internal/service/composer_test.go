package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
)

func TestComposeOrderGroups_PartitionsByPharmacy(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, Name: "Paracetamol 500mg", PharmacyID: 1, Price: dec("8.90"), Quantity: 2},
		{ProductID: 3, Name: "Vitamina C 1g", PharmacyID: 2, Price: dec("15.90"), Quantity: 1},
	}

	groups := ComposeOrderGroups(items, 0)

	require.Len(t, groups, 2)
	assert.Equal(t, int64(1), groups[0].PharmacyID)
	assert.True(t, groups[0].Total.Equal(dec("17.80")))
	assert.Equal(t, int64(2), groups[1].PharmacyID)
	assert.True(t, groups[1].Total.Equal(dec("15.90")))
}

func TestComposeOrderGroups_FirstAppearanceOrder(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 10, PharmacyID: 3, Price: dec("1"), Quantity: 1},
		{ProductID: 11, PharmacyID: 1, Price: dec("2"), Quantity: 1},
		{ProductID: 12, PharmacyID: 3, Price: dec("3"), Quantity: 2},
	}

	groups := ComposeOrderGroups(items, 0)

	require.Len(t, groups, 2)
	assert.Equal(t, int64(3), groups[0].PharmacyID)
	assert.Equal(t, []int64{10, 12}, []int64{groups[0].Items[0].ProductID, groups[0].Items[1].ProductID})
	assert.True(t, groups[0].Total.Equal(dec("7")))
	assert.Equal(t, int64(1), groups[1].PharmacyID)
}

func TestComposeOrderGroups_DefaultPharmacy(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, PharmacyID: 0, Price: dec("4.00"), Quantity: 1},
		{ProductID: 2, PharmacyID: 7, Price: dec("1.00"), Quantity: 1},
		{ProductID: 3, PharmacyID: 0, Price: dec("2.50"), Quantity: 2},
	}

	groups := ComposeOrderGroups(items, 7)

	require.Len(t, groups, 1)
	assert.Equal(t, int64(7), groups[0].PharmacyID)
	assert.Len(t, groups[0].Items, 3)
	for _, item := range groups[0].Items {
		assert.Equal(t, int64(7), item.PharmacyID)
	}
	assert.True(t, groups[0].Total.Equal(dec("10.00")))
	assert.True(t, needsDefaultPharmacy(items))
}

func TestComposeOrderGroups_TotalsMatchCartSubtotal(t *testing.T) {
	items := []models.CartItem{
		{ProductID: 1, PharmacyID: 1, Price: dec("8.90"), Quantity: 3},
		{ProductID: 2, PharmacyID: 2, Price: dec("6.50"), Quantity: 1},
		{ProductID: 3, PharmacyID: 3, Price: dec("15.90"), Quantity: 2},
		{ProductID: 5, PharmacyID: 1, Price: dec("39.90"), Quantity: 1},
	}

	sum := dec("0")
	lines := 0
	for _, g := range ComposeOrderGroups(items, 0) {
		sum = sum.Add(g.Total)
		lines += len(g.Items)
	}

	assert.True(t, sum.Equal(GroupTotal(items)))
	assert.Equal(t, len(items), lines)
}

func TestCheckoutSavings(t *testing.T) {
	f := newFixture(t, nil)
	items := []models.CartItem{
		f.cartItem(t, paracetamolID, 2),
		f.cartItem(t, vitaminaCID, 1),
		f.cartItem(t, shampooID, 1),
	}

	assert.True(t, CheckoutSavings(items).Equal(dec("12.00")))
}
