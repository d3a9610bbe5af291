package handlers

import (
	"net/http"

	"gatepass-backend/internal/api/middleware"
	"gatepass-backend/internal/models"
	"gatepass-backend/internal/websocket"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WebSocketHandler streams pass events. Visitors only ever see their own
// passes; staff see everything that matches their filters.
type WebSocketHandler struct {
	manager *websocket.Manager
	logger  *zap.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		logger:  logger,
	}
}

// HandleWebSocket must run behind AuthMiddleware, which also accepts ?token=.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	role := models.Role(c.GetString(middleware.ContextRole))
	if !role.Valid() {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication token required", nil)
		return
	}

	visitorID := ""
	if !role.IsStaff() {
		visitorID = c.GetString(middleware.ContextUserID)
	}

	filters := websocket.PassFilters{
		PassIDs:   c.QueryArray("passIds"),
		Statuses:  c.QueryArray("statuses"),
		PassTypes: c.QueryArray("types"),
	}

	conn, err := h.manager.GetUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Warn("Failed to upgrade connection to WebSocket", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	if err := h.manager.RegisterClient(clientID, conn, visitorID, filters); err != nil {
		h.logger.Error("Failed to register WebSocket client", zap.String("client_id", clientID), zap.Error(err))
		conn.Close()
		return
	}

	h.logger.Info("WebSocket client connected",
		zap.String("client_id", clientID),
		zap.String("user_id", c.GetString(middleware.ContextUserID)),
		zap.Bool("visitor_scope", visitorID != ""),
	)
}

// GetConnectedClients returns the number of connected WebSocket clients
func (h *WebSocketHandler) GetConnectedClients(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "WebSocket clients retrieved successfully", gin.H{
		"connectedClients": h.manager.GetConnectedClients(),
		"stats":            h.manager.GetClientStats(),
	})
}

// DisconnectClient drops a client by id
func (h *WebSocketHandler) DisconnectClient(c *gin.Context) {
	clientID := c.Param("clientId")

	if err := h.manager.UnregisterClient(clientID); err != nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Failed to disconnect client", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Client disconnected successfully", nil)
}
