// Package handlers provides HTTP API request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vibeweb/sockethub/internal/model"
	"github.com/vibeweb/sockethub/internal/registry"
	"github.com/vibeweb/sockethub/internal/trafficlog"
)

// Disconnector terminates a client's transport session. The websocket hub
// implements it.
type Disconnector interface {
	ForceDisconnect(sid string) error
}

// ControlHandler serves read-only snapshots of the registry and traffic log
// plus the operator control actions.
type ControlHandler struct {
	registry     *registry.Registry
	traffic      *trafficlog.Log
	disconnector Disconnector
}

// NewControlHandler creates a ControlHandler. disconnector may be nil when
// the transport is not yet available; the disconnect action then fails with
// a server-not-ready response.
func NewControlHandler(reg *registry.Registry, traffic *trafficlog.Log, disconnector Disconnector) *ControlHandler {
	return &ControlHandler{
		registry:     reg,
		traffic:      traffic,
		disconnector: disconnector,
	}
}

// ConnectionsResponse is the GET /api/connections payload.
type ConnectionsResponse struct {
	Count       int                    `json:"count"`
	Connections []model.ConnectionView `json:"connections"`
}

// LogsResponse is the GET /api/logs payload.
type LogsResponse struct {
	Count int                  `json:"count"`
	Logs  []model.LogEntryView `json:"logs"`
}

// Connections handles GET /api/connections.
func (h *ControlHandler) Connections(c *gin.Context) {
	conns := h.registry.All()
	views := make([]model.ConnectionView, 0, len(conns))
	for _, conn := range conns {
		views = append(views, conn.View())
	}
	c.JSON(http.StatusOK, ConnectionsResponse{
		Count:       h.registry.Count(),
		Connections: views,
	})
}

// Logs handles GET /api/logs.
func (h *ControlHandler) Logs(c *gin.Context) {
	entries := h.traffic.All()
	views := make([]model.LogEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entry.View())
	}
	c.JSON(http.StatusOK, LogsResponse{
		Count: len(views),
		Logs:  views,
	})
}

// ClearLogs handles POST /api/logs/clear.
func (h *ControlHandler) ClearLogs(c *gin.Context) {
	h.traffic.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// DisconnectClient handles POST /api/disconnect/:sid. The registry is not
// mutated here; removal happens asynchronously through the normal disconnect
// event once the transport confirms teardown.
func (h *ControlHandler) DisconnectClient(c *gin.Context) {
	if h.disconnector == nil {
		sendError(c, http.StatusBadGateway, "Server not initialized")
		return
	}

	sid := c.Param("sid")
	if _, ok := h.registry.Get(sid); !ok {
		sendError(c, http.StatusNotFound, "Client not found")
		return
	}

	if err := h.disconnector.ForceDisconnect(sid); err != nil {
		sendError(c, http.StatusNotFound, "Client not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected", "sid": sid})
}

// RegisterRoutes registers the control handler routes on a Gin router group.
func (h *ControlHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/connections", h.Connections)
	rg.GET("/logs", h.Logs)
	rg.POST("/logs/clear", h.ClearLogs)
	rg.POST("/disconnect/:sid", h.DisconnectClient)
}

// sendError sends a structured error response.
func sendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"status": "error", "message": message})
}
