package store

import (
	"ecocook/internal/core/models"
	"ecocook/internal/pkg/common"
)

// ListBatches 列出使用者所有庫存批次（含食材）
func (q *Queries) ListBatches(userID uint) ([]models.InventoryBatch, error) {
	var batches []models.InventoryBatch
	err := q.db.Preload("Ingredient").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&batches).Error
	return batches, err
}

// ListBatchesForIngredient 列出使用者某一食材的所有批次
func (q *Queries) ListBatchesForIngredient(userID, ingredientID uint) ([]models.InventoryBatch, error) {
	var batches []models.InventoryBatch
	err := q.db.Preload("Ingredient").
		Where("user_id = ? AND ingredient_id = ?", userID, ingredientID).
		Order("id ASC").
		Find(&batches).Error
	return batches, err
}

// CreateBatch 新增庫存批次
func (q *Queries) CreateBatch(batch *models.InventoryBatch) error {
	return q.db.Omit("Ingredient").Create(batch).Error
}

// UpdateBatchQuantity 更新批次數量
func (q *Queries) UpdateBatchQuantity(id uint, quantity float64) error {
	return q.db.Model(&models.InventoryBatch{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// DeleteBatch 刪除批次
func (q *Queries) DeleteBatch(id uint) error {
	return q.db.Delete(&models.InventoryBatch{}, id).Error
}

// DeleteUserBatch 刪除使用者的批次，找不到時回傳 404 錯誤
func (q *Queries) DeleteUserBatch(userID, id uint) error {
	result := q.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.InventoryBatch{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NotFound("inventory item not found")
	}
	return nil
}
