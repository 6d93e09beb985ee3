package service

import "github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"

// ComposeOrderGroups partitions cart lines by pharmacy. Lines without a
// pharmacy go to defaultPharmacyID. Groups keep the order in which their
// pharmacy first appears in the cart, and lines keep cart order within a
// group.
func ComposeOrderGroups(items []models.CartItem, defaultPharmacyID int64) []models.OrderGroup {
	groups := make([]models.OrderGroup, 0)
	index := make(map[int64]int)

	for _, item := range items {
		pharmacyID := item.PharmacyID
		if pharmacyID == 0 {
			pharmacyID = defaultPharmacyID
			item.PharmacyID = pharmacyID
		}

		i, ok := index[pharmacyID]
		if !ok {
			i = len(groups)
			index[pharmacyID] = i
			groups = append(groups, models.OrderGroup{PharmacyID: pharmacyID})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	for i := range groups {
		groups[i].Total = GroupTotal(groups[i].Items)
	}
	return groups
}

func needsDefaultPharmacy(items []models.CartItem) bool {
	for _, item := range items {
		if item.PharmacyID == 0 {
			return true
		}
	}
	return false
}
