// Package units 提供計量單位的正規化與換算。
package units

import (
	"fmt"
	"math"
	"strings"

	"ecocook/internal/pkg/common"
)

// Unit 正規化後的計量單位（小寫、去除空白）
type Unit string

// 食材可使用的計量單位
const (
	Tablespoon Unit = "tbsp"
	Milliliter Unit = "ml"
	Gram       Unit = "g"
	Piece      Unit = "piece"
	Pieces     Unit = "pieces"
	Teaspoon   Unit = "tsp"
	Head       Unit = "head"
	Slices     Unit = "slices"
	Pinch      Unit = "pinch"
	Cloves     Unit = "cloves"
	Kilogram   Unit = "kg"
	Liter      Unit = "l"
)

// Category 單位分類
type Category string

const (
	Mass   Category = "mass"
	Volume Category = "volume"
	Count  Category = "count"
)

type unitDef struct {
	category Category
	factor   float64 // 相對於分類基準單位（g、ml、piece）
}

var conversionTable = map[Unit]unitDef{
	// mass (base = g)
	Gram:     {category: Mass, factor: 1},
	Kilogram: {category: Mass, factor: 1000},

	// volume (base = ml)
	Milliliter: {category: Volume, factor: 1},
	Liter:      {category: Volume, factor: 1000},
	Tablespoon: {category: Volume, factor: 15},
	Teaspoon:   {category: Volume, factor: 5},

	// count (base = piece)
	Piece:  {category: Count, factor: 1},
	Pieces: {category: Count, factor: 1},
}

var knownUnits = map[Unit]bool{
	Tablespoon: true,
	Milliliter: true,
	Gram:       true,
	Piece:      true,
	Pieces:     true,
	Teaspoon:   true,
	Head:       true,
	Slices:     true,
	Pinch:      true,
	Cloves:     true,
	Kilogram:   true,
	Liter:      true,
}

// Normalize 去除前後空白並轉為小寫
func Normalize(s string) Unit {
	return Unit(strings.ToLower(strings.TrimSpace(s)))
}

// Parse 正規化並驗證單位，未知或空白單位回傳驗證錯誤
func Parse(s string) (Unit, error) {
	u := Normalize(s)
	if u == "" {
		return "", common.NewValidationError("unit is required")
	}
	if !knownUnits[u] {
		return "", common.NewValidationError(fmt.Sprintf("unknown unit %q", s))
	}
	return u, nil
}

// Known 回傳所有可用單位
func Known() []Unit {
	return []Unit{Gram, Kilogram, Milliliter, Liter, Tablespoon, Teaspoon, Piece, Pieces, Head, Slices, Pinch, Cloves}
}

// Convert 在同分類單位之間換算數量。
// 兩個單位正規化後相同時原樣回傳；未知單位或跨分類時 ok 為 false，
// 呼叫端需自行決定退回原始數量。
func Convert(quantity float64, from, to Unit) (float64, bool) {
	from = Normalize(string(from))
	to = Normalize(string(to))
	if from == to {
		return quantity, true
	}

	fromDef, ok := conversionTable[from]
	if !ok {
		return 0, false
	}
	toDef, ok := conversionTable[to]
	if !ok || fromDef.category != toDef.category {
		return 0, false
	}

	return quantity * (fromDef.factor / toDef.factor), true
}

// ConvertOrRaw 換算失敗時退回原始數量
func ConvertOrRaw(quantity float64, from, to Unit) float64 {
	if converted, ok := Convert(quantity, from, to); ok {
		return converted
	}
	return quantity
}

// Round 依小數位數四捨五入，僅供顯示使用
func Round(quantity float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(quantity*p) / p
}
