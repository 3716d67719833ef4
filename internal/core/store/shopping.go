package store

import (
	"errors"

	"ecocook/internal/core/models"

	"gorm.io/gorm"
)

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, ingredient_id ASC")
	}).Preload("Items.Ingredient")
}

// ListShoppingLists 列出使用者的購物清單（含項目）
func (q *Queries) ListShoppingLists(userID uint) ([]models.ShoppingList, error) {
	var lists []models.ShoppingList
	err := preloadItems(q.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&lists).Error
	return lists, err
}

// GetShoppingList 查詢使用者的購物清單，不屬於該使用者時視為不存在
func (q *Queries) GetShoppingList(userID, id uint) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := preloadItems(q.db).Where("id = ? AND user_id = ?", id, userID).First(&list).Error
	if err != nil {
		return nil, notFound(err, "shopping list")
	}
	return &list, nil
}

// CreateShoppingList 新增購物清單
func (q *Queries) CreateShoppingList(list *models.ShoppingList) error {
	return q.db.Omit("Items").Create(list).Error
}

// FindOrCreateShoppingList 以名稱查詢使用者的購物清單，不存在時建立
func (q *Queries) FindOrCreateShoppingList(userID uint, name string) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := q.db.Where("user_id = ? AND name = ?", userID, name).Order("id ASC").First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = models.ShoppingList{UserID: userID, Name: name}
	if err := q.CreateShoppingList(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// SetShoppingListCompleted 更新清單完成狀態
func (q *Queries) SetShoppingListCompleted(id uint, completed bool) error {
	return q.db.Model(&models.ShoppingList{}).Where("id = ?", id).Update("is_completed", completed).Error
}

// DeleteShoppingList 刪除使用者的購物清單及其項目
func (q *Queries) DeleteShoppingList(userID, id uint) error {
	if _, err := q.GetShoppingList(userID, id); err != nil {
		return err
	}
	if err := q.db.Where("shopping_list_id = ?", id).Delete(&models.ShoppingListItem{}).Error; err != nil {
		return err
	}
	return q.db.Delete(&models.ShoppingList{}, id).Error
}

// UpsertShoppingListItem 將數量累加至既有項目，不存在時建立新項目
func (q *Queries) UpsertShoppingListItem(listID, ingredientID uint, quantity float64, notes string) (*models.ShoppingListItem, error) {
	item, err := q.GetShoppingListItem(listID, ingredientID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if item == nil {
		item = &models.ShoppingListItem{
			ShoppingListID: listID,
			IngredientID:   ingredientID,
			Quantity:       quantity,
			Notes:          notes,
		}
		if err := q.db.Omit("Ingredient").Create(item).Error; err != nil {
			return nil, err
		}
		return item, nil
	}

	item.Quantity += quantity
	updates := map[string]interface{}{"quantity": item.Quantity}
	// 追加數量後的項目尚未買齊
	if quantity > 0 {
		item.IsPurchased = false
		updates["is_purchased"] = false
	}
	if notes != "" {
		item.Notes = notes
		updates["notes"] = notes
	}
	err = q.db.Model(&models.ShoppingListItem{}).
		Where("shopping_list_id = ? AND ingredient_id = ?", listID, ingredientID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetShoppingListItem 查詢清單中的項目
func (q *Queries) GetShoppingListItem(listID, ingredientID uint) (*models.ShoppingListItem, error) {
	var item models.ShoppingListItem
	err := q.db.Preload("Ingredient").
		Where("shopping_list_id = ? AND ingredient_id = ?", listID, ingredientID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "shopping list item")
	}
	return &item, nil
}

// SetShoppingListItemPurchased 更新項目購買狀態
func (q *Queries) SetShoppingListItemPurchased(listID, ingredientID uint, purchased bool) error {
	return q.db.Model(&models.ShoppingListItem{}).
		Where("shopping_list_id = ? AND ingredient_id = ?", listID, ingredientID).
		Update("is_purchased", purchased).Error
}

// DeleteShoppingListItem 刪除清單中的項目
func (q *Queries) DeleteShoppingListItem(listID, ingredientID uint) error {
	result := q.db.Where("shopping_list_id = ? AND ingredient_id = ?", listID, ingredientID).
		Delete(&models.ShoppingListItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "shopping list item")
	}
	return nil
}
