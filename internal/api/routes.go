// Package api wires the HTTP surface of the pairing engine.
package api

import (
	"blindpair/backend/internal/api/handler"
	"blindpair/backend/internal/api/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers every route on r. limiter guards match attempts, which
// clients poll.
func SetupRoutes(r *gin.Engine, h *handler.Handler, parser middleware.TokenParser, limiter *middleware.RateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "NOT_FOUND"})
	})

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(parser))
	{
		pool := api.Group("/pool")
		pool.POST("/join", h.JoinPool)
		pool.POST("/leave", h.LeavePool)
		pool.GET("/mine", h.MyPoolEntry)

		match := api.Group("/match")
		match.POST("/try", limiter.PerUser(), h.TryMatch)
		match.GET("/current", h.CurrentMatch)
		match.POST("/opening-move", h.SubmitOpeningMove)

		chat := api.Group("/chat")
		chat.POST("/guess", h.SubmitGuess)
		chat.GET("/:chatId", h.GetChat)
		chat.GET("/:chatId/reveal-status", h.RevealStatus)
		chat.GET("/:chatId/messages", h.ListMessages)
		chat.POST("/:chatId/messages", h.SendMessage)
		chat.POST("/:chatId/end", h.EndChat)

		api.POST("/telegram/link-code", h.TelegramLinkCode)
		api.GET("/ws", h.ServeWebSocket)
	}
}
