package handler

import (
	"blindpair/backend/internal/api/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

type joinPoolRequest struct {
	Mood        string `json:"mood" binding:"required"`
	Description string `json:"description"`
}

// JoinPool ставить користувача в пул з обраним настроєм
func (h *Handler) JoinPool(c *gin.Context) {
	var req joinPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	_, err := h.Services.Pool.Join(c.Request.Context(), middleware.UserID(c), middleware.InstitutionID(c), req.Mood, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) LeavePool(c *gin.Context) {
	if err := h.Services.Pool.Leave(c.Request.Context(), middleware.UserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) MyPoolEntry(c *gin.Context) {
	entry, err := h.Services.Pool.Mine(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
