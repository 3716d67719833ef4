package recipe

import (
	"sort"
	"strings"
	"time"

	"ecocook/internal/core/inventory"
	"ecocook/internal/core/models"
)

// SortPolicy 食譜排序方式
type SortPolicy string

const (
	SortByMatch    SortPolicy = "match"
	SortByRating   SortPolicy = "rating"
	SortByExpiry   SortPolicy = "expiry"
	SortByWeighted SortPolicy = "weighted"
	SortByName     SortPolicy = "all"
)

// NoExpiryDays 沒有可用到期日時視為的天數
const NoExpiryDays = 9999

// 加權排序的權重
const (
	weightMissing = 0.5
	weightExpiry  = 0.3
	weightRating  = 0.2
)

// ParseSortPolicy 解析排序方式，未知或空值回退為 match
func ParseSortPolicy(s string) SortPolicy {
	switch p := SortPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case SortByMatch, SortByRating, SortByExpiry, SortByWeighted, SortByName:
		return p
	default:
		return SortByMatch
	}
}

// RankedRecipe 附帶比對資料的食譜
type RankedRecipe struct {
	Recipe            *models.Recipe     `json:"recipe"`
	AverageRating     float64            `json:"average_rating"`
	TotalTime         int                `json:"total_time"`
	InsufficientCount int                `json:"insufficient_count"`
	EarliestExpiry    *time.Time         `json:"earliest_expiry,omitempty"`
	DaysUntilExpiry   int                `json:"days_until_expiry"`
	Score             *float64           `json:"score,omitempty"`
	Statuses          []IngredientStatus `json:"statuses"`
}

// Rank 依排序方式排列食譜目錄。排序為穩定排序，同分時保留目錄順序。
// batches 為依食材分組的使用者批次，用於計算最早到期日。
func Rank(
	recipes []models.Recipe,
	totals map[uint]float64,
	batches map[uint][]models.InventoryBatch,
	policy SortPolicy,
	today time.Time,
) []RankedRecipe {
	today = models.Day(today)
	ranked := make([]RankedRecipe, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		statuses := IngredientStatuses(r, totals)
		earliest := earliestExpiryFor(r, batches)
		days := NoExpiryDays
		if earliest != nil {
			days = models.DaysBetween(today, *earliest)
		}
		ranked[i] = RankedRecipe{
			Recipe:            r,
			AverageRating:     r.AverageRating(),
			TotalTime:         r.TotalTime(),
			InsufficientCount: InsufficientCount(statuses),
			EarliestExpiry:    earliest,
			DaysUntilExpiry:   days,
			Statuses:          statuses,
		}
	}

	switch ParseSortPolicy(string(policy)) {
	case SortByRating:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].AverageRating > ranked[j].AverageRating
		})
	case SortByExpiry:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].DaysUntilExpiry < ranked[j].DaysUntilExpiry
		})
	case SortByWeighted:
		scoreWeighted(ranked)
		sort.SliceStable(ranked, func(i, j int) bool {
			return *ranked[i].Score < *ranked[j].Score
		})
	case SortByName:
		sort.SliceStable(ranked, func(i, j int) bool {
			return strings.ToLower(ranked[i].Recipe.Name) < strings.ToLower(ranked[j].Recipe.Name)
		})
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].InsufficientCount < ranked[j].InsufficientCount
		})
	}
	return ranked
}

// earliestExpiryFor 回傳食譜所需任一食材批次中最早的到期日
func earliestExpiryFor(recipe *models.Recipe, batches map[uint][]models.InventoryBatch) *time.Time {
	var earliest *time.Time
	for _, ri := range recipe.Ingredients {
		exp := inventory.EarliestExpiry(batches[ri.IngredientID])
		if exp != nil && (earliest == nil || exp.Before(*earliest)) {
			earliest = exp
		}
	}
	return earliest
}

// scoreWeighted 以目前結果集合中的最大值正規化各項指標並寫入 Score（越低越好）。
// 已過期的天數為負值，此時以集合中的最小值為起點平移，使到期項維持在 [0, 1]。
func scoreWeighted(ranked []RankedRecipe) {
	var maxMissing, minDays, maxDays int
	var maxRating float64
	for i, r := range ranked {
		if i == 0 || r.InsufficientCount > maxMissing {
			maxMissing = r.InsufficientCount
		}
		if i == 0 || r.DaysUntilExpiry < minDays {
			minDays = r.DaysUntilExpiry
		}
		if i == 0 || r.DaysUntilExpiry > maxDays {
			maxDays = r.DaysUntilExpiry
		}
		if i == 0 || r.AverageRating > maxRating {
			maxRating = r.AverageRating
		}
	}

	offset := min(minDays, 0)
	for i := range ranked {
		r := &ranked[i]
		score := weightMissing*ratio(float64(r.InsufficientCount), float64(maxMissing)) +
			weightExpiry*ratio(float64(r.DaysUntilExpiry-offset), float64(maxDays-offset)) +
			weightRating*(1-ratio(r.AverageRating, maxRating))
		r.Score = &score
	}
}

func ratio(value, maxValue float64) float64 {
	if maxValue == 0 {
		return 0
	}
	return value / maxValue
}
