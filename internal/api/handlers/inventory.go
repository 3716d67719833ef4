package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"ecocook/internal/core/inventory"
	"ecocook/internal/core/models"
	"ecocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

const defaultExpiringDays = 7

// InventoryHandler 庫存處理程序
type InventoryHandler struct {
	svc *inventory.Service
}

// NewInventoryHandler 創建庫存處理程序
func NewInventoryHandler(svc *inventory.Service) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

type addBatchRequest struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	ExpiryDate string  `json:"expiry_date"`
}

// List GET /inventory?q=
func (h *InventoryHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	overview, err := h.svc.List(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Expiring GET /inventory/expiring?days=N
func (h *InventoryHandler) Expiring(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	days := defaultExpiringDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, common.NewValidationError("days must be an integer"))
			return
		}
		days = n
	}

	batches, err := h.svc.Expiring(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "items": batches})
}

// Add POST /inventory
func (h *InventoryHandler) Add(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req addBatchRequest
	if !bindJSON(c, &req, false) {
		return
	}

	add := inventory.AddRequest{Name: req.Name, Quantity: req.Quantity, Unit: req.Unit}
	if s := strings.TrimSpace(req.ExpiryDate); s != "" {
		expiry, err := models.ParseDate(s)
		if err != nil {
			respondError(c, common.NewValidationError("expiry_date must be YYYY-MM-DD"))
			return
		}
		add.ExpiryDate = &expiry
	}

	batch, err := h.svc.Add(c.Request.Context(), userID, add)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// Delete DELETE /inventory/:id
func (h *InventoryHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	batchID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID, batchID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Ingredients GET /ingredients
func (h *InventoryHandler) Ingredients(c *gin.Context) {
	ingredients, err := h.svc.Ingredients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}
