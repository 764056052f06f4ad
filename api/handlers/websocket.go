package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vibeweb/sockethub/internal/ws"
)

// WebSocketHandler exposes the WebSocket attach endpoint.
type WebSocketHandler struct {
	wsHandler *ws.Handler
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(wsHandler *ws.Handler) *WebSocketHandler {
	return &WebSocketHandler{wsHandler: wsHandler}
}

// Attach handles GET /ws - upgrades the request and hands the connection to
// the transport layer.
func (h *WebSocketHandler) Attach(c *gin.Context) {
	if err := h.wsHandler.HandleConnection(c.Writer, c.Request); err != nil {
		// Upgrade failures already wrote a response.
		return
	}
}

// RegisterRoutes registers the WebSocket route on the engine root.
func (h *WebSocketHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.Attach)
}
