package store

import (
	"strings"

	"ecocook/internal/core/models"

	"gorm.io/gorm"
)

// preloadIngredients 依目錄順序載入食譜食材
func preloadIngredients(db *gorm.DB) *gorm.DB {
	return db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, id ASC")
	}).Preload("Ingredients.Ingredient")
}

// ListRecipes 依目錄順序列出所有食譜（含食材）
func (q *Queries) ListRecipes() ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := preloadIngredients(q.db).Order("id ASC").Find(&recipes).Error
	return recipes, err
}

// GetRecipe 查詢單一食譜（含食材）
func (q *Queries) GetRecipe(id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadIngredients(q.db).First(&recipe, id).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	return &recipe, nil
}

// CountRecipes 回傳食譜數量
func (q *Queries) CountRecipes() (int64, error) {
	var count int64
	err := q.db.Model(&models.Recipe{}).Count(&count).Error
	return count, err
}

// CreateRecipe 新增食譜與其食材
func (q *Queries) CreateRecipe(recipe *models.Recipe) error {
	if err := q.db.Omit("Ingredients").Create(recipe).Error; err != nil {
		return err
	}
	for i := range recipe.Ingredients {
		ri := &recipe.Ingredients[i]
		ri.RecipeID = recipe.ID
		ri.Position = i
		if err := q.db.Omit("Ingredient").Create(ri).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddRating 累加評分
func (q *Queries) AddRating(id uint, rating int) error {
	result := q.db.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
		"rating_sum":   gorm.Expr("rating_sum + ?", rating),
		"rating_count": gorm.Expr("rating_count + ?", 1),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "recipe")
	}
	return nil
}

// CreateCookingHistory 新增烹飪紀錄
func (q *Queries) CreateCookingHistory(entry *models.CookingHistory) error {
	return q.db.Omit("Recipe").Create(entry).Error
}

// ListCookingHistory 依時間倒序列出烹飪紀錄
func (q *Queries) ListCookingHistory(userID uint) ([]models.CookingHistory, error) {
	var entries []models.CookingHistory
	err := q.db.Preload("Recipe").
		Where("user_id = ?", userID).
		Order("cooked_at DESC, id DESC").
		Find(&entries).Error
	return entries, err
}

// RecipeNameExists 不分大小寫檢查食譜名稱是否已存在
func (q *Queries) RecipeNameExists(name string) (bool, error) {
	var count int64
	err := q.db.Model(&models.Recipe{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}
