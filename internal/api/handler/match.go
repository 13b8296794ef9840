package handler

import (
	"blindpair/backend/internal/api/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

type openingMoveRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	Choice string `json:"choice"`
}

// TryMatch шукає пару для користувача з пулу
func (h *Handler) TryMatch(c *gin.Context) {
	res, err := h.Services.Engine.TryMatch(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CurrentMatch returns the caller's live chat, if any.
func (h *Handler) CurrentMatch(c *gin.Context) {
	chat, err := h.Services.Engine.Current(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

func (h *Handler) SubmitOpeningMove(c *gin.Context) {
	var req openingMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Services.Gate.Submit(c.Request.Context(), middleware.UserID(c), req.ChatID, req.Choice)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
