// Package recipe 比對食譜與庫存、排序推薦並執行烹飪扣庫存。
package recipe

import (
	"context"
	"fmt"
	"time"

	"ecocook/internal/core/inventory"
	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/pkg/common"
	"ecocook/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Catalog 提供共用食譜目錄，可由快取實作
type Catalog interface {
	Recipes(ctx context.Context) ([]models.Recipe, error)
	Invalidate(ctx context.Context)
}

// Detail 食譜詳情與食材狀態
type Detail struct {
	Recipe        *models.Recipe     `json:"recipe"`
	AverageRating float64            `json:"average_rating"`
	TotalTime     int                `json:"total_time"`
	Statuses      []IngredientStatus `json:"statuses"`
}

// Service 食譜服務
type Service struct {
	store     *store.Store
	inventory *inventory.Service
	catalog   Catalog
	now       func() time.Time
}

// NewService 創建新的食譜服務，catalog 為 nil 時直接查詢資料庫
func NewService(st *store.Store, inv *inventory.Service, catalog Catalog, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:     st,
		inventory: inv,
		catalog:   catalog,
		now:       now,
	}
}

func (s *Service) recipes(ctx context.Context) ([]models.Recipe, error) {
	if s.catalog != nil {
		return s.catalog.Recipes(ctx)
	}
	return s.store.Queries(ctx).ListRecipes()
}

// List 依排序方式回傳使用者的推薦食譜
func (s *Service) List(ctx context.Context, userID uint, policy SortPolicy) ([]RankedRecipe, error) {
	recipes, err := s.recipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	totals, batches, err := s.inventory.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	policy = ParseSortPolicy(string(policy))
	metrics.RecordRanking(string(policy))
	return Rank(recipes, totals, batches, policy, s.now()), nil
}

// Get 回傳食譜詳情與使用者的食材狀態
func (s *Service) Get(ctx context.Context, userID, recipeID uint) (*Detail, error) {
	recipe, err := s.store.Queries(ctx).GetRecipe(recipeID)
	if err != nil {
		return nil, err
	}
	totals, _, err := s.inventory.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Recipe:        recipe,
		AverageRating: recipe.AverageRating(),
		TotalTime:     recipe.TotalTime(),
		Statuses:      IngredientStatuses(recipe, totals),
	}, nil
}

// Status 回傳食譜每項食材的狀態
func (s *Service) Status(ctx context.Context, userID, recipeID uint) ([]IngredientStatus, error) {
	detail, err := s.Get(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	return detail.Statuses, nil
}

// Rate 為食譜評分（1 到 5）
func (s *Service) Rate(ctx context.Context, recipeID uint, rating int) (*models.Recipe, error) {
	if rating < 1 || rating > 5 {
		return nil, common.NewValidationError("rating must be between 1 and 5")
	}

	var recipe *models.Recipe
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		if err := q.AddRating(recipeID, rating); err != nil {
			return err
		}
		var err error
		recipe, err = q.GetRecipe(recipeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	return recipe, nil
}

// CookCheck 預覽烹飪結果，不修改任何資料
func (s *Service) CookCheck(ctx context.Context, userID, recipeID uint) (*CookCheckResult, error) {
	q := s.store.Queries(ctx)
	recipe, err := q.GetRecipe(recipeID)
	if err != nil {
		return nil, err
	}

	result := &CookCheckResult{RecipeID: recipe.ID, HadAll: true, Missing: []MissingItem{}}
	// 同一食材出現多次時，後面的列看到的是前面扣除後的剩餘量
	pending := make(map[uint][]models.InventoryBatch)
	for _, ri := range recipe.Ingredients {
		needed := NeededQuantity(ri)
		if needed <= 0 {
			continue
		}
		batches, ok := pending[ri.IngredientID]
		if !ok {
			if batches, err = q.ListBatchesForIngredient(userID, ri.IngredientID); err != nil {
				return nil, err
			}
		}
		plan, shortfall := PlanConsumption(batches, needed)
		pending[ri.IngredientID] = ApplyConsumption(batches, plan)
		if shortfall > 0 {
			result.HadAll = false
			result.Missing = append(result.Missing, MissingItem{
				Name:    ri.Ingredient.Name,
				Missing: shortfall,
				Unit:    ri.Ingredient.Unit,
			})
		}
	}
	return result, nil
}

// Cook 烹飪食譜：依到期日扣除庫存，依模式將食材加入以食譜命名的購物清單，
// 並寫入烹飪紀錄。所有變更在同一交易內完成。
func (s *Service) Cook(ctx context.Context, userID, recipeID uint, mode CookMode) (*CookResult, error) {
	mode, err := ParseCookMode(string(mode))
	if err != nil {
		return nil, err
	}

	result := &CookResult{RecipeID: recipeID, Mode: mode, HadAll: true, QueuedItems: []QueuedItem{}}
	err = s.store.Transaction(ctx, func(q *store.Queries) error {
		recipe, err := q.GetRecipe(recipeID)
		if err != nil {
			return err
		}

		var list *models.ShoppingList
		for _, ri := range recipe.Ingredients {
			needed := NeededQuantity(ri)
			if needed <= 0 {
				continue
			}

			batches, err := q.ListBatchesForIngredient(userID, ri.IngredientID)
			if err != nil {
				return err
			}
			plan, shortfall := PlanConsumption(batches, needed)
			for _, c := range plan {
				if c.Depleted() {
					err = q.DeleteBatch(c.BatchID)
				} else {
					err = q.UpdateBatchQuantity(c.BatchID, c.Remaining)
				}
				if err != nil {
					return fmt.Errorf("failed to consume batch %d: %w", c.BatchID, err)
				}
			}
			if shortfall > 0 {
				result.HadAll = false
			}

			queued := queueQuantity(mode, needed, shortfall)
			if queued <= 0 {
				continue
			}
			if list == nil {
				if list, err = q.FindOrCreateShoppingList(userID, recipe.Name); err != nil {
					return err
				}
			}
			if _, err := q.UpsertShoppingListItem(list.ID, ri.IngredientID, queued, ""); err != nil {
				return err
			}
			result.QueuedItems = append(result.QueuedItems, QueuedItem{
				Name:     ri.Ingredient.Name,
				Quantity: queued,
				Unit:     ri.Ingredient.Unit,
			})
		}

		if list != nil {
			result.ShoppingList = &list.ID
		}
		return q.CreateCookingHistory(&models.CookingHistory{
			UserID:   userID,
			RecipeID: recipe.ID,
			Mode:     string(mode),
			HadAll:   result.HadAll,
			CookedAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordCook(string(mode), result.HadAll, len(result.QueuedItems))
	common.LogInfo("Recipe cooked",
		zap.Uint("user_id", userID),
		zap.Uint("recipe_id", recipeID),
		zap.String("mode", string(mode)),
		zap.Bool("had_all", result.HadAll),
		zap.Int("queued_items", len(result.QueuedItems)),
	)
	return result, nil
}

// History 列出使用者的烹飪紀錄
func (s *Service) History(ctx context.Context, userID uint) ([]models.CookingHistory, error) {
	return s.store.Queries(ctx).ListCookingHistory(userID)
}
