package handlers

import (
	"context"
	"net/http"
	"time"

	"gatepass-backend/internal/websocket"
	"gatepass-backend/pkg/database"
	"gatepass-backend/pkg/redis"
	"gatepass-backend/pkg/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler reports on the store and whichever backends are configured.
// A nil redis client or database is left out of the report.
type HealthHandler struct {
	store       store.Store
	redisClient *redis.Client
	db          *mongo.Database
	wsManager   *websocket.Manager
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
}

func NewHealthHandler(st store.Store, redisClient *redis.Client, db *mongo.Database, wsManager *websocket.Manager) *HealthHandler {
	return &HealthHandler{
		store:       st,
		redisClient: redisClient,
		db:          db,
		wsManager:   wsManager,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]interface{}),
	}

	overallHealthy := true

	storeStatus := h.checkStore(c.Request.Context())
	response.Services["store"] = storeStatus
	if !storeStatus["healthy"].(bool) {
		overallHealthy = false
	}

	if h.redisClient != nil {
		redisStatus := h.checkRedis()
		response.Services["redis"] = redisStatus
		if !redisStatus["healthy"].(bool) {
			overallHealthy = false
		}
	}

	if h.db != nil {
		mongoStatus := h.checkMongoDB()
		response.Services["mongodb"] = mongoStatus
		if !mongoStatus["healthy"].(bool) {
			overallHealthy = false
		}
	}

	if h.wsManager != nil {
		response.Services["websocket"] = map[string]interface{}{
			"service": "websocket",
			"healthy": true,
			"clients": h.wsManager.GetClientStats(),
		}
	}

	if overallHealthy {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
	} else {
		response.Status = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
	}
}

func (h *HealthHandler) checkStore(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"service": "store",
		"healthy": false,
	}

	if h.store == nil {
		status["error"] = "Store not initialized"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		status["error"] = err.Error()
	} else {
		status["healthy"] = true
		status["message"] = "Connected"
	}
	status["stats"] = h.store.Stats()

	return status
}

func (h *HealthHandler) checkMongoDB() map[string]interface{} {
	status := map[string]interface{}{
		"service": "mongodb",
		"healthy": false,
	}

	if err := database.Health(h.db); err != nil {
		status["error"] = err.Error()
	} else {
		status["healthy"] = true
		status["message"] = "Connected"
	}

	return status
}

func (h *HealthHandler) checkRedis() map[string]interface{} {
	healthStatus := h.redisClient.HealthCheck()

	status := map[string]interface{}{
		"service":         "redis",
		"healthy":         healthStatus.IsConnected,
		"connectionInfo":  healthStatus.ConnectionInfo,
		"responseTime":    healthStatus.ResponseTime.String(),
		"lastPing":        healthStatus.LastPing,
		"connectionStats": h.redisClient.GetConnectionStats(),
	}
	if healthStatus.Error != "" {
		status["error"] = healthStatus.Error
	}

	return status
}
