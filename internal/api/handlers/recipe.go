package handlers

import (
	"net/http"

	"ecocook/internal/core/recipe"

	"github.com/gin-gonic/gin"
)

// RecipeHandler 食譜推薦與烹飪處理程序
type RecipeHandler struct {
	svc *recipe.Service
}

// NewRecipeHandler 創建食譜處理程序
func NewRecipeHandler(svc *recipe.Service) *RecipeHandler {
	return &RecipeHandler{svc: svc}
}

type rateRequest struct {
	Rating int `json:"rating"`
}

type cookRequest struct {
	Mode string `json:"mode"`
}

// List GET /recipes?sort=
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	policy := recipe.ParseSortPolicy(c.Query("sort"))
	ranked, err := h.svc.List(c.Request.Context(), userID, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sort": policy, "recipes": ranked})
}

// Get GET /recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Get(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Status GET /recipes/:id/status
func (h *RecipeHandler) Status(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	statuses, err := h.svc.Status(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_id": recipeID, "ingredients": statuses})
}

// Rate POST /recipes/:id/rate
func (h *RecipeHandler) Rate(c *gin.Context) {
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if !bindJSON(c, &req, false) {
		return
	}
	rated, err := h.svc.Rate(c.Request.Context(), recipeID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipe_id":      rated.ID,
		"average_rating": rated.AverageRating(),
		"rating_count":   rated.RatingCount,
	})
}

// CookCheck GET /recipes/:id/cook-check
func (h *RecipeHandler) CookCheck(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.CookCheck(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cook POST /recipes/:id/cook，請求體可省略，預設模式為 none
func (h *RecipeHandler) Cook(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	recipeID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req cookRequest
	if !bindJSON(c, &req, true) {
		return
	}
	result, err := h.svc.Cook(c.Request.Context(), userID, recipeID, recipe.CookMode(req.Mode))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// History GET /history
func (h *RecipeHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	history, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
