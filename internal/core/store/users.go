package store

import (
	"strings"

	"ecocook/internal/core/models"
)

// CreateUser 新增使用者
func (q *Queries) CreateUser(user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return q.db.Create(user).Error
}

// FindUserByEmail 以 email 查詢使用者
func (q *Queries) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := q.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// GetUser 以 id 查詢使用者
func (q *Queries) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := q.db.First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

// DeleteUser 刪除使用者及其擁有的庫存、購物清單與烹飪紀錄
func (q *Queries) DeleteUser(id uint) error {
	if _, err := q.GetUser(id); err != nil {
		return err
	}

	listIDs := q.db.Model(&models.ShoppingList{}).Select("id").Where("user_id = ?", id)
	if err := q.db.Where("shopping_list_id IN (?)", listIDs).Delete(&models.ShoppingListItem{}).Error; err != nil {
		return err
	}
	if err := q.db.Where("user_id = ?", id).Delete(&models.ShoppingList{}).Error; err != nil {
		return err
	}
	if err := q.db.Where("user_id = ?", id).Delete(&models.InventoryBatch{}).Error; err != nil {
		return err
	}
	if err := q.db.Where("user_id = ?", id).Delete(&models.CookingHistory{}).Error; err != nil {
		return err
	}
	return q.db.Delete(&models.User{}, id).Error
}
