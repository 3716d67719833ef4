// Package catalog 管理共用食譜目錄：初始資料、JSON 匯入與目錄快取。
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"ecocook/internal/core/cache"
	"ecocook/internal/core/models"
	"ecocook/internal/core/store"
	"ecocook/internal/core/units"
	"ecocook/internal/pkg/common"
	"ecocook/internal/pkg/metrics"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

//go:embed seed.json
var seedJSON []byte

const recipesCacheKey = "catalog:recipes"

// Catalog 食譜目錄
type Catalog struct {
	store   *store.Store
	cache   cache.Cache
	fetcher *Fetcher
}

// New 創建新的食譜目錄，c 或 fetcher 可為 nil
func New(st *store.Store, c cache.Cache, fetcher *Fetcher) *Catalog {
	return &Catalog{store: st, cache: c, fetcher: fetcher}
}

// Recipes 依目錄順序回傳所有食譜，優先讀取快取
func (c *Catalog) Recipes(ctx context.Context) ([]models.Recipe, error) {
	if c.cache != nil {
		data, err := c.cache.Get(ctx, recipesCacheKey)
		switch {
		case err == nil:
			var recipes []models.Recipe
			if err := json.Unmarshal(data, &recipes); err == nil {
				return recipes, nil
			}
			common.LogWarn("Discarding unreadable catalog cache entry")
		case !errors.Is(err, common.ErrCacheMiss):
			common.LogWarn("Catalog cache read failed", zap.Error(err))
		}
	}

	recipes, err := c.store.Queries(ctx).ListRecipes()
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if data, err := json.Marshal(recipes); err == nil {
			if err := c.cache.Set(ctx, recipesCacheKey, data); err != nil {
				common.LogWarn("Catalog cache write failed", zap.Error(err))
			}
		}
	}
	return recipes, nil
}

// Invalidate 清除目錄快取
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, recipesCacheKey); err != nil {
		common.LogWarn("Catalog cache invalidation failed", zap.Error(err))
	}
}

// Seed 目錄為空時匯入內建食譜
func (c *Catalog) Seed(ctx context.Context) (*ImportResult, error) {
	count, err := c.store.Queries(ctx).CountRecipes()
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	if count > 0 {
		common.LogInfo("Recipes already exist, skipping seeding", zap.Int64("count", count))
		return &ImportResult{Skipped: []string{}}, nil
	}
	return c.ImportJSON(ctx, bytes.NewReader(seedJSON))
}

// ImportFile 從 JSON 檔案匯入食譜
func (c *Catalog) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return c.ImportJSON(ctx, f)
}

// ImportURL 從遠端 URL 下載並匯入食譜
func (c *Catalog) ImportURL(ctx context.Context, url string) (*ImportResult, error) {
	if c.fetcher == nil {
		return nil, common.NewValidationError("remote import is not configured")
	}
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.ImportJSON(ctx, bytes.NewReader(data))
}

// ImportJSON 解析並匯入食譜文件
func (c *Catalog) ImportJSON(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var doc Document
	if err := common.DecodeJSON(r, &doc); err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("invalid recipe document: %v", err))
	}
	return c.Import(ctx, &doc)
}

// Import 在單一交易內匯入食譜。
// 名稱已存在的食譜略過；單位不在列舉中的食材略過並記錄警告。
func (c *Catalog) Import(ctx context.Context, doc *Document) (*ImportResult, error) {
	if err := common.ValidateStruct(doc); err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: []string{}}
	err := c.store.Transaction(ctx, func(q *store.Queries) error {
		for _, rd := range doc.Recipes {
			exists, err := q.RecipeNameExists(rd.Name)
			if err != nil {
				return err
			}
			if exists {
				result.Skipped = append(result.Skipped, rd.Name)
				continue
			}

			recipe, err := buildRecipe(q, rd)
			if err != nil {
				return err
			}
			if err := q.CreateRecipe(recipe); err != nil {
				return fmt.Errorf("failed to create recipe %s: %w", rd.Name, err)
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.Invalidate(ctx)
	metrics.RecordImport(result.Imported)
	common.LogInfo("Recipes imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func buildRecipe(q *store.Queries, rd RecipeDoc) (*models.Recipe, error) {
	recipe := &models.Recipe{
		Name:         strings.TrimSpace(rd.Name),
		Description:  rd.Description,
		Servings:     rd.Servings,
		PrepTime:     rd.PrepTime,
		CookTime:     rd.CookTime,
		Difficulty:   rd.Difficulty,
		Cuisine:      rd.Cuisine,
		Diet:         rd.Diet,
		Instructions: datatypes.JSONSlice[string](rd.Instructions),
		Nutrition:    datatypes.JSONMap(rd.Nutrition),
		ImageURL:     rd.ImageURL,
	}

	for _, ing := range rd.Ingredients {
		rawUnit := ing.Unit
		if strings.TrimSpace(rawUnit) == "" {
			rawUnit = string(units.Pieces)
		}
		unit, err := units.Parse(rawUnit)
		if err != nil {
			common.LogWarn("Unknown unit, skipping ingredient",
				zap.String("recipe", rd.Name),
				zap.String("ingredient", ing.Name),
				zap.String("unit", ing.Unit),
			)
			continue
		}

		ingredient, _, err := q.FindOrCreateIngredient(ing.Name, unit)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve ingredient %s: %w", ing.Name, err)
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: ingredient.ID,
			Quantity:     ing.Quantity,
			Unit:         unit,
			IsOptional:   ing.Optional,
		})
	}
	return recipe, nil
}
