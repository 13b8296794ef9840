package handler

import (
	"blindpair/backend/internal/api/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TelegramLinkCode видає код, який користувач надсилає боту командою /start
func (h *Handler) TelegramLinkCode(c *gin.Context) {
	if h.LinkCodes == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "telegram is not configured", "code": "TELEGRAM_DISABLED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": h.LinkCodes.Issue(middleware.UserID(c))})
}
