package handler

import (
	"blindpair/backend/internal/api/middleware"
	"blindpair/backend/internal/chathub"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated, so any origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket і реєструє клієнта в ChatHub
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Logger.WithError(err).Info("websocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, middleware.UserID(c), conn)
	h.Hub.RegisterCh <- client
	client.Run()
}
