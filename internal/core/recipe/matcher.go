package recipe

import (
	"math"

	"ecocook/internal/core/models"
	"ecocook/internal/core/units"
)

// IngredientStatus 單一食譜食材的需求與庫存比對結果，數量皆為食材標準單位
type IngredientStatus struct {
	IngredientID      uint       `json:"ingredient_id"`
	IngredientName    string     `json:"ingredient_name"`
	NeededQuantity    float64    `json:"needed_quantity"`
	AvailableQuantity float64    `json:"available_quantity"`
	UnitLabel         units.Unit `json:"unit"`
	IsSufficient      bool       `json:"is_sufficient"`
	MissingQuantity   float64    `json:"missing_quantity"`
	IsOptional        bool       `json:"is_optional"`
}

// NeededQuantity 將食譜用量換算為食材標準單位，無法換算時沿用原始數量
func NeededQuantity(ri models.RecipeIngredient) float64 {
	return units.ConvertOrRaw(ri.Quantity, ri.Unit, ri.Ingredient.Unit)
}

// IngredientStatuses 依食譜食材順序計算每項食材的狀態，選用食材也包含在內
func IngredientStatuses(recipe *models.Recipe, totals map[uint]float64) []IngredientStatus {
	statuses := make([]IngredientStatus, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		needed := NeededQuantity(ri)
		available := totals[ri.IngredientID]
		statuses = append(statuses, IngredientStatus{
			IngredientID:      ri.IngredientID,
			IngredientName:    ri.Ingredient.Name,
			NeededQuantity:    needed,
			AvailableQuantity: available,
			UnitLabel:         ri.Ingredient.Unit,
			IsSufficient:      available >= needed,
			MissingQuantity:   math.Max(0, needed-available),
			IsOptional:        ri.IsOptional,
		})
	}
	return statuses
}

// InsufficientCount 計算不足的食材數
func InsufficientCount(statuses []IngredientStatus) int {
	n := 0
	for _, s := range statuses {
		if !s.IsSufficient {
			n++
		}
	}
	return n
}
