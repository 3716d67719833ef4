// Package models 定義持久化實體。
package models

import (
	"strings"
	"time"

	"ecocook/internal/core/units"

	"gorm.io/datatypes"
)

// User 使用者
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ingredient 食材字典，名稱不分大小寫唯一
type Ingredient struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	NameKey   string     `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Unit      units.Unit `gorm:"size:20;not null" json:"unit"`
	Category  string     `gorm:"size:50" json:"category,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IngredientKey 回傳比對用的食材名稱鍵
func IngredientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// InventoryBatch 使用者擁有的一批食材，數量以食材的標準單位儲存
type InventoryBatch struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index:idx_batch_user_ingredient" json:"user_id"`
	IngredientID uint       `gorm:"not null;index:idx_batch_user_ingredient" json:"ingredient_id"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	ExpiryDate   *time.Time `gorm:"index" json:"expiry_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

// DaysToExpiry 距離到期的天數，無到期日時回傳 nil
func (b *InventoryBatch) DaysToExpiry(today time.Time) *int {
	if b.ExpiryDate == nil {
		return nil
	}
	days := DaysBetween(today, *b.ExpiryDate)
	return &days
}

// Recipe 共用食譜
type Recipe struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"size:200;not null" json:"name"`
	Description  string                      `gorm:"type:text" json:"description,omitempty"`
	Servings     int                         `gorm:"default:4" json:"servings"`
	PrepTime     *int                        `json:"prep_time,omitempty"`
	CookTime     *int                        `json:"cook_time,omitempty"`
	Difficulty   string                      `gorm:"size:20" json:"difficulty,omitempty"`
	Cuisine      string                      `gorm:"size:50" json:"cuisine,omitempty"`
	Diet         string                      `gorm:"size:50" json:"diet,omitempty"`
	Instructions datatypes.JSONSlice[string] `json:"instructions,omitempty"`
	Nutrition    datatypes.JSONMap           `json:"nutrition,omitempty"`
	ImageURL     string                      `gorm:"size:255" json:"image_url,omitempty"`
	RatingSum    int                         `gorm:"default:0" json:"rating_sum"`
	RatingCount  int                         `gorm:"default:0" json:"rating_count"`
	CreatedAt    time.Time                   `json:"created_at"`

	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

// AverageRating 平均評分，四捨五入至小數兩位
func (r *Recipe) AverageRating() float64 {
	if r.RatingCount > 0 {
		return units.Round(float64(r.RatingSum)/float64(r.RatingCount), 2)
	}
	return 0
}

// TotalTime 準備與烹調時間總和（分鐘）
func (r *Recipe) TotalTime() int {
	total := 0
	if r.PrepTime != nil {
		total += *r.PrepTime
	}
	if r.CookTime != nil {
		total += *r.CookTime
	}
	return total
}

// RecipeIngredient 食譜所需食材，單位可與食材標準單位不同
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;index" json:"ingredient_id"`
	Position     int        `gorm:"not null;default:0" json:"position"`
	Quantity     float64    `gorm:"not null" json:"quantity"`
	Unit         units.Unit `gorm:"size:20;not null" json:"unit"`
	IsOptional   bool       `gorm:"default:false" json:"is_optional"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

// ShoppingList 購物清單
type ShoppingList struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []ShoppingListItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// ShoppingListItem 購物清單項目，以 (清單, 食材) 為識別
type ShoppingListItem struct {
	ShoppingListID uint      `gorm:"primaryKey;autoIncrement:false" json:"shopping_list_id"`
	IngredientID   uint      `gorm:"primaryKey;autoIncrement:false" json:"ingredient_id"`
	Quantity       float64   `gorm:"not null" json:"quantity"`
	IsPurchased    bool      `gorm:"default:false" json:"is_purchased"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Ingredient Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
}

// CookingHistory 烹飪紀錄
type CookingHistory struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index" json:"user_id"`
	RecipeID uint      `gorm:"index" json:"recipe_id"`
	Mode     string    `gorm:"size:20;not null" json:"mode"`
	HadAll   bool      `json:"had_all"`
	CookedAt time.Time `json:"cooked_at"`

	Recipe Recipe `gorm:"foreignKey:RecipeID" json:"recipe"`
}

// TableName 使用單數表名
func (CookingHistory) TableName() string {
	return "cooking_history"
}

// All 回傳需要自動遷移的模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&InventoryBatch{},
		&Recipe{},
		&RecipeIngredient{},
		&ShoppingList{},
		&ShoppingListItem{},
		&CookingHistory{},
	}
}
