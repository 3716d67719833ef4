package catalog

// Document 食譜匯入檔格式
type Document struct {
	Recipes []RecipeDoc `json:"recipes" validate:"required,dive"`
}

// RecipeDoc 匯入的單一食譜
type RecipeDoc struct {
	Name         string                 `json:"name" validate:"required,max=200"`
	Description  string                 `json:"description"`
	Servings     int                    `json:"servings" validate:"gte=0"`
	PrepTime     *int                   `json:"prep_time" validate:"omitempty,gte=0"`
	CookTime     *int                   `json:"cook_time" validate:"omitempty,gte=0"`
	Difficulty   string                 `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Cuisine      string                 `json:"cuisine" validate:"max=50"`
	Diet         string                 `json:"diet" validate:"max=50"`
	Instructions []string               `json:"instructions"`
	Nutrition    map[string]interface{} `json:"nutrition"`
	ImageURL     string                 `json:"image_url" validate:"omitempty,url"`
	Ingredients  []IngredientDoc        `json:"ingredients" validate:"dive"`
}

// IngredientDoc 匯入的食譜食材，未指定單位時視為 pieces
type IngredientDoc struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit"`
	Optional bool    `json:"optional"`
}

// ImportResult 匯入結果
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}
