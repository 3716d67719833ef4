// Package inventory 管理使用者的食材庫存批次。
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/core/units"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultExpiringDays 即將到期面板的預設天數
const DefaultExpiringDays = 7

// AddRequest 新增庫存批次的輸入
type AddRequest struct {
	Name       string
	Quantity   float64
	Unit       string
	ExpiryDate *time.Time
}

// Overview 庫存總覽
type Overview struct {
	Items    []models.InventoryBatch `json:"items"`
	Expiring []models.InventoryBatch `json:"expiring"`
}

// Service 庫存服務
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService 創建新的庫存服務
func NewService(st *store.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: st, now: now}
}

// List 列出使用者的批次（依到期日排序），q 不為空時以食材名稱子字串過濾，
// 同時回傳 7 天內到期的批次
func (s *Service) List(ctx context.Context, userID uint, q string) (*Overview, error) {
	batches, err := s.store.Queries(ctx).ListBatches(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	SortByExpiry(batches)

	items := batches
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		items = make([]models.InventoryBatch, 0, len(batches))
		for _, b := range batches {
			if strings.Contains(strings.ToLower(b.Ingredient.Name), q) {
				items = append(items, b)
			}
		}
	}

	return &Overview{
		Items:    items,
		Expiring: ExpiringWithin(batches, s.now(), DefaultExpiringDays),
	}, nil
}

// Expiring 回傳 days 天內到期的批次
func (s *Service) Expiring(ctx context.Context, userID uint, days int) ([]models.InventoryBatch, error) {
	if days < 0 {
		return nil, common.NewValidationError("days must not be negative")
	}
	batches, err := s.store.Queries(ctx).ListBatches(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return ExpiringWithin(batches, s.now(), days), nil
}

// Totals 回傳使用者各食材的庫存總量與依食材分組的批次
func (s *Service) Totals(ctx context.Context, userID uint) (map[uint]float64, map[uint][]models.InventoryBatch, error) {
	batches, err := s.store.Queries(ctx).ListBatches(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return Totals(batches), ByIngredient(batches), nil
}

// Add 新增庫存批次。
// 食材不分大小寫查詢，不存在時以輸入單位為標準單位建立；
// 數量換算為食材標準單位後儲存，無法換算時拒絕。
func (s *Service) Add(ctx context.Context, userID uint, req AddRequest) (*models.InventoryBatch, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("ingredient name is required")
	}
	if req.Quantity <= 0 {
		return nil, common.NewValidationError("quantity must be greater than zero")
	}
	unit, err := units.Parse(req.Unit)
	if err != nil {
		return nil, err
	}

	var batch *models.InventoryBatch
	err = s.store.Transaction(ctx, func(q *store.Queries) error {
		ing, _, err := q.FindOrCreateIngredient(name, unit)
		if err != nil {
			return err
		}

		quantity, ok := units.Convert(req.Quantity, unit, ing.Unit)
		if !ok {
			return common.NewValidationError(fmt.Sprintf("cannot convert %s to %s for %s", unit, ing.Unit, ing.Name))
		}

		var expiry *time.Time
		if req.ExpiryDate != nil {
			d := models.Day(*req.ExpiryDate)
			expiry = &d
		}

		batch = &models.InventoryBatch{
			UserID:       userID,
			IngredientID: ing.ID,
			Quantity:     quantity,
			ExpiryDate:   expiry,
		}
		if err := q.CreateBatch(batch); err != nil {
			return err
		}
		batch.Ingredient = *ing
		return nil
	})
	if err != nil {
		return nil, err
	}

	common.LogInfo("Inventory item added",
		zap.Uint("user_id", userID),
		zap.String("ingredient", batch.Ingredient.Name),
		zap.Float64("quantity", batch.Quantity),
	)
	return batch, nil
}

// Delete 刪除使用者的批次
func (s *Service) Delete(ctx context.Context, userID, batchID uint) error {
	return s.store.Transaction(ctx, func(q *store.Queries) error {
		return q.DeleteUserBatch(userID, batchID)
	})
}

// Ingredients 列出食材字典
func (s *Service) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	return s.store.Queries(ctx).ListIngredients()
}
