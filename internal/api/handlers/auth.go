package handlers

import (
	"net/http"

	"ecocook/internal/core/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 帳號相關處理程序
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler 創建帳號處理程序
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.Credentials
	if !bindJSON(c, &req, false) {
		return
	}
	sess, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.Credentials
	if !bindJSON(c, &req, false) {
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// DeleteMe DELETE /auth/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
