package recipe

import (
	"fmt"
	"math"
	"strings"

	"ecocook/internal/core/inventory"
	"ecocook/internal/core/models"
	"ecocook/internal/core/units"
	"ecocook/internal/pkg/common"
)

// CookMode 烹飪時處理購物清單的方式
type CookMode string

const (
	// CookNone 只扣除庫存
	CookNone CookMode = "none"
	// CookReplace 每項食材的完整用量都加入購物清單
	CookReplace CookMode = "replace"
	// CookMissing 只將不足的部分加入購物清單
	CookMissing CookMode = "missing"
)

// quantityEpsilon 浮點誤差容許值，低於此值的剩餘量視為零
const quantityEpsilon = 1e-9

// ParseCookMode 解析烹飪模式，空值視為 none
func ParseCookMode(s string) (CookMode, error) {
	switch m := CookMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CookNone, nil
	case CookNone, CookReplace, CookMissing:
		return m, nil
	default:
		return "", common.NewValidationError(fmt.Sprintf("unknown cook mode %q", s))
	}
}

// Consumption 對單一批次的扣除
type Consumption struct {
	BatchID   uint    `json:"batch_id"`
	Taken     float64 `json:"taken"`
	Remaining float64 `json:"remaining"`
}

// Depleted 扣除後批次是否用盡
func (c Consumption) Depleted() bool {
	return c.Remaining <= quantityEpsilon
}

// PlanConsumption 依到期日由早到晚（無到期日最後）貪婪扣除批次，
// 回傳每個受影響批次的扣除量與仍不足的數量。不修改傳入的批次。
func PlanConsumption(batches []models.InventoryBatch, needed float64) ([]Consumption, float64) {
	ordered := make([]models.InventoryBatch, len(batches))
	copy(ordered, batches)
	inventory.SortByExpiry(ordered)

	remaining := needed
	plan := make([]Consumption, 0, len(ordered))
	for _, b := range ordered {
		if remaining <= quantityEpsilon {
			break
		}
		take := math.Min(b.Quantity, remaining)
		plan = append(plan, Consumption{
			BatchID:   b.ID,
			Taken:     take,
			Remaining: b.Quantity - take,
		})
		remaining -= take
	}
	if remaining <= quantityEpsilon {
		remaining = 0
	}
	return plan, remaining
}

// ApplyConsumption 回傳套用扣除計畫後的批次副本，用盡的批次會被移除
func ApplyConsumption(batches []models.InventoryBatch, plan []Consumption) []models.InventoryBatch {
	taken := make(map[uint]Consumption, len(plan))
	for _, c := range plan {
		taken[c.BatchID] = c
	}
	out := make([]models.InventoryBatch, 0, len(batches))
	for _, b := range batches {
		if c, ok := taken[b.ID]; ok {
			if c.Depleted() {
				continue
			}
			b.Quantity = c.Remaining
		}
		out = append(out, b)
	}
	return out
}

// QueuedItem 烹飪後加入購物清單的項目
type QueuedItem struct {
	Name     string     `json:"name"`
	Quantity float64    `json:"quantity"`
	Unit     units.Unit `json:"unit"`
}

// CookResult 烹飪結果
type CookResult struct {
	RecipeID     uint         `json:"recipe_id"`
	Mode         CookMode     `json:"mode"`
	HadAll       bool         `json:"had_all"`
	QueuedItems  []QueuedItem `json:"queued_items"`
	ShoppingList *uint        `json:"shopping_list_id,omitempty"`
}

// MissingItem 預檢時不足的食材
type MissingItem struct {
	Name    string     `json:"name"`
	Missing float64    `json:"missing"`
	Unit    units.Unit `json:"unit"`
}

// CookCheckResult 烹飪預檢結果
type CookCheckResult struct {
	RecipeID uint          `json:"recipe_id"`
	HadAll   bool          `json:"had_all"`
	Missing  []MissingItem `json:"missing"`
}

// queueQuantity 依模式決定加入購物清單的數量
func queueQuantity(mode CookMode, needed, shortfall float64) float64 {
	switch mode {
	case CookMissing:
		return shortfall
	case CookReplace:
		return needed
	default:
		return 0
	}
}
