package inventory

import (
	"sort"
	"time"

	"ecocook/internal/core/models"
)

// Totals 依食材彙總批次數量。
// 不做單位換算：批次一律以食材標準單位儲存（見 Service.Add）。
func Totals(batches []models.InventoryBatch) map[uint]float64 {
	totals := make(map[uint]float64, len(batches))
	for _, b := range batches {
		totals[b.IngredientID] += b.Quantity
	}
	return totals
}

// ByIngredient 將批次依食材分組，並依到期日排序
func ByIngredient(batches []models.InventoryBatch) map[uint][]models.InventoryBatch {
	grouped := make(map[uint][]models.InventoryBatch)
	for _, b := range batches {
		grouped[b.IngredientID] = append(grouped[b.IngredientID], b)
	}
	for id := range grouped {
		SortByExpiry(grouped[id])
	}
	return grouped
}

// SortByExpiry 依到期日升冪排序，無到期日者排在最後；相同時保持原順序
func SortByExpiry(batches []models.InventoryBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i].ExpiryDate, batches[j].ExpiryDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// ExpiringWithin 回傳到期日不晚於 today+days 的批次，依到期日排序。
// 無到期日的批次不會出現。
func ExpiringWithin(batches []models.InventoryBatch, today time.Time, days int) []models.InventoryBatch {
	cutoff := models.Day(today).AddDate(0, 0, days)
	expiring := make([]models.InventoryBatch, 0)
	for _, b := range batches {
		if b.ExpiryDate == nil {
			continue
		}
		if !models.Day(*b.ExpiryDate).After(cutoff) {
			expiring = append(expiring, b)
		}
	}
	SortByExpiry(expiring)
	return expiring
}

// EarliestExpiry 回傳批次中最早的到期日
func EarliestExpiry(batches []models.InventoryBatch) *time.Time {
	var earliest *time.Time
	for i := range batches {
		exp := batches[i].ExpiryDate
		if exp == nil {
			continue
		}
		if earliest == nil || exp.Before(*earliest) {
			e := *exp
			earliest = &e
		}
	}
	return earliest
}
