package handlers

import (
	"net/http"

	"ecocook/internal/core/shopping"

	"github.com/gin-gonic/gin"
)

// ShoppingHandler 購物清單處理程序
type ShoppingHandler struct {
	svc *shopping.Service
}

// NewShoppingHandler 創建購物清單處理程序
func NewShoppingHandler(svc *shopping.Service) *ShoppingHandler {
	return &ShoppingHandler{svc: svc}
}

type createListRequest struct {
	Name string `json:"name"`
}

type addItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes"`
}

// Lists GET /shopping
func (h *ShoppingHandler) Lists(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lists, err := h.svc.Lists(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

// Create POST /shopping
func (h *ShoppingHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createListRequest
	if !bindJSON(c, &req, false) {
		return
	}
	list, err := h.svc.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// Get GET /shopping/:id
func (h *ShoppingHandler) Get(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	list, err := h.svc.Get(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ToggleComplete POST /shopping/:id/complete
func (h *ShoppingHandler) ToggleComplete(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	list, err := h.svc.ToggleComplete(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Delete DELETE /shopping/:id
func (h *ShoppingHandler) Delete(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, listID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem POST /shopping/:id/items
func (h *ShoppingHandler) AddItem(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	var req addItemRequest
	if !bindJSON(c, &req, false) {
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), userID, listID, shopping.ItemRequest{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ToggleItem POST /shopping/:id/items/:ingredientId/toggle
func (h *ShoppingHandler) ToggleItem(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	ingredientID, ok := idParam(c, "ingredientId")
	if !ok {
		return
	}
	item, err := h.svc.ToggleItem(c.Request.Context(), userID, listID, ingredientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem DELETE /shopping/:id/items/:ingredientId
func (h *ShoppingHandler) DeleteItem(c *gin.Context) {
	userID, listID, ok := h.listParams(c)
	if !ok {
		return
	}
	ingredientID, ok := idParam(c, "ingredientId")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), userID, listID, ingredientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShoppingHandler) listParams(c *gin.Context) (uint, uint, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return 0, 0, false
	}
	listID, ok := idParam(c, "id")
	return userID, listID, ok
}
