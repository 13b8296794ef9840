package handler

import (
	"blindpair/backend/internal/api/middleware"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type guessRequest struct {
	ChatID string `json:"chatId" binding:"required"`
	Guess  string `json:"guess"`
}

type messageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) SubmitGuess(c *gin.Context) {
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Services.Reveal.SubmitGuess(c.Request.Context(), middleware.UserID(c), req.ChatID, req.Guess)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RevealStatus(c *gin.Context) {
	res, err := h.Services.Reveal.Status(c.Request.Context(), middleware.UserID(c), c.Param("chatId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetChat(c *gin.Context) {
	chat, err := h.Services.Conversations.Get(c.Request.Context(), middleware.UserID(c), c.Param("chatId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// ListMessages віддає останні повідомлення чату, ?limit= обмежує кількість
func (h *Handler) ListMessages(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		limit = n
	}
	msgs, err := h.Services.Conversations.Messages(c.Request.Context(), middleware.UserID(c), c.Param("chatId"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) SendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.Services.Conversations.SendMessage(c.Request.Context(), middleware.UserID(c), c.Param("chatId"), req.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) EndChat(c *gin.Context) {
	if err := h.Services.Conversations.End(c.Request.Context(), middleware.UserID(c), c.Param("chatId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
