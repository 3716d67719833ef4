// Package shopping 管理使用者的購物清單與項目。
package shopping

import (
	"context"
	"fmt"
	"strings"

	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/core/units"
	"ecocook/internal/pkg/common"

	"go.uber.org/zap"
)

// ItemRequest 新增購物項目的輸入
type ItemRequest struct {
	Name     string
	Quantity float64
	Unit     string
	Notes    string
}

// Service 購物清單服務
type Service struct {
	store *store.Store
}

// NewService 創建新的購物清單服務
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Lists 列出使用者的購物清單
func (s *Service) Lists(ctx context.Context, userID uint) ([]models.ShoppingList, error) {
	return s.store.Queries(ctx).ListShoppingLists(userID)
}

// Get 查詢購物清單
func (s *Service) Get(ctx context.Context, userID, listID uint) (*models.ShoppingList, error) {
	return s.store.Queries(ctx).GetShoppingList(userID, listID)
}

// Create 建立購物清單
func (s *Service) Create(ctx context.Context, userID uint, name string) (*models.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("list name is required")
	}
	if len(name) > 100 {
		return nil, common.NewValidationError("list name must be at most 100 characters")
	}

	list := &models.ShoppingList{UserID: userID, Name: name, Items: []models.ShoppingListItem{}}
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		return q.CreateShoppingList(list)
	})
	if err != nil {
		return nil, err
	}
	common.LogInfo("Shopping list created", zap.Uint("user_id", userID), zap.Uint("list_id", list.ID))
	return list, nil
}

// ToggleComplete 切換清單完成狀態
func (s *Service) ToggleComplete(ctx context.Context, userID, listID uint) (*models.ShoppingList, error) {
	var list *models.ShoppingList
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		current, err := q.GetShoppingList(userID, listID)
		if err != nil {
			return err
		}
		if err := q.SetShoppingListCompleted(listID, !current.IsCompleted); err != nil {
			return err
		}
		current.IsCompleted = !current.IsCompleted
		list = current
		return nil
	})
	return list, err
}

// Delete 刪除清單與其項目
func (s *Service) Delete(ctx context.Context, userID, listID uint) error {
	return s.store.Transaction(ctx, func(q *store.Queries) error {
		return q.DeleteShoppingList(userID, listID)
	})
}

// AddItem 將食材加入清單；同一食材重複加入時累加數量。
// 數量換算為食材標準單位，無法換算時拒絕。
func (s *Service) AddItem(ctx context.Context, userID, listID uint, req ItemRequest) (*models.ShoppingListItem, error) {
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

	var item *models.ShoppingListItem
	err = s.store.Transaction(ctx, func(q *store.Queries) error {
		if _, err := q.GetShoppingList(userID, listID); err != nil {
			return err
		}
		ing, _, err := q.FindOrCreateIngredient(name, unit)
		if err != nil {
			return err
		}
		quantity, ok := units.Convert(req.Quantity, unit, ing.Unit)
		if !ok {
			return common.NewValidationError(fmt.Sprintf("cannot convert %s to %s for %s", unit, ing.Unit, ing.Name))
		}
		item, err = q.UpsertShoppingListItem(listID, ing.ID, quantity, strings.TrimSpace(req.Notes))
		if err != nil {
			return err
		}
		item.Ingredient = *ing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleItem 切換項目購買狀態
func (s *Service) ToggleItem(ctx context.Context, userID, listID, ingredientID uint) (*models.ShoppingListItem, error) {
	var item *models.ShoppingListItem
	err := s.store.Transaction(ctx, func(q *store.Queries) error {
		if _, err := q.GetShoppingList(userID, listID); err != nil {
			return err
		}
		current, err := q.GetShoppingListItem(listID, ingredientID)
		if err != nil {
			return err
		}
		if err := q.SetShoppingListItemPurchased(listID, ingredientID, !current.IsPurchased); err != nil {
			return err
		}
		current.IsPurchased = !current.IsPurchased
		item = current
		return nil
	})
	return item, err
}

// DeleteItem 刪除清單中的項目
func (s *Service) DeleteItem(ctx context.Context, userID, listID, ingredientID uint) error {
	return s.store.Transaction(ctx, func(q *store.Queries) error {
		if _, err := q.GetShoppingList(userID, listID); err != nil {
			return err
		}
		return q.DeleteShoppingListItem(listID, ingredientID)
	})
}
