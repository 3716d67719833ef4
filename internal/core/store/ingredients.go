package store

import (
	"strings"

	"ecocook/internal/core/models"
	"ecocook/internal/core/units"
)

// FindIngredientByName 不分大小寫查詢食材
func (q *Queries) FindIngredientByName(name string) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := q.db.Where("name_key = ?", models.IngredientKey(name)).First(&ing).Error
	if err != nil {
		return nil, notFound(err, "ingredient")
	}
	return &ing, nil
}

// FindOrCreateIngredient 不分大小寫查詢食材，不存在時以指定單位建立
func (q *Queries) FindOrCreateIngredient(name string, unit units.Unit) (*models.Ingredient, bool, error) {
	ing, err := q.FindIngredientByName(name)
	if err == nil {
		return ing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	ing = &models.Ingredient{
		Name:    strings.TrimSpace(name),
		NameKey: models.IngredientKey(name),
		Unit:    unit,
	}
	if err := q.db.Create(ing).Error; err != nil {
		return nil, false, err
	}
	return ing, true, nil
}

// ListIngredients 依名稱排序列出所有食材
func (q *Queries) ListIngredients() ([]models.Ingredient, error) {
	var ings []models.Ingredient
	err := q.db.Order("name_key ASC").Find(&ings).Error
	return ings, err
}
