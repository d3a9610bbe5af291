package routes

import (
	"gatepass-backend/internal/api/handlers"
	"gatepass-backend/internal/api/middleware"
	"gatepass-backend/internal/models"
	"gatepass-backend/internal/services"
	"gatepass-backend/internal/websocket"
	"gatepass-backend/pkg/jwt"
	"gatepass-backend/pkg/ratelimit"
	"gatepass-backend/pkg/redis"
	"gatepass-backend/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Dependencies are built in main. Redis, DB and Limiter may be nil.
type Dependencies struct {
	Manager         *services.PassManager
	JWT             *jwt.JWTUtil
	WebSocket       *websocket.Manager
	Store           store.Store
	Redis           *redis.Client
	DB              *mongo.Database
	Limiter         ratelimit.RateLimiter
	RateLimitConfig *ratelimit.Config
	Logger          *zap.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.RequestLogger(deps.Logger), middleware.Metrics())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.Manager, deps.JWT)
	passHandler := handlers.NewPassHandler(deps.Manager)
	viewHandler := handlers.NewViewHandler(deps.Manager)
	reportHandler := handlers.NewReportHandler(deps.Manager)
	healthHandler := handlers.NewHealthHandler(deps.Store, deps.Redis, deps.DB, deps.WebSocket)
	wsHandler := handlers.NewWebSocketHandler(deps.WebSocket, deps.Logger)

	// runs after auth so authenticated callers are limited per user
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limit = middleware.RateLimitMiddleware(deps.Limiter, deps.RateLimitConfig, deps.Logger)
	}

	api := router.Group("/api/v1")

	// Public routes
	public := api.Group("", limit)
	{
		public.GET("/health", healthHandler.HealthCheck)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/logout", authHandler.Logout)
		public.POST("/auth/refresh", authHandler.RefreshToken)
	}

	// Guests may request a pass without a session
	optional := api.Group("", middleware.OptionalAuth(deps.JWT), limit)
	{
		optional.POST("/passes", passHandler.CreatePass)
	}

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(deps.JWT), limit)
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/passes/mine", passHandler.GetMyPasses)
		protected.GET("/passes/:id", passHandler.GetPass)
		protected.GET("/views/:view", viewHandler.GetView)
		protected.GET("/ws/passes", wsHandler.HandleWebSocket)
	}

	staff := protected.Group("", middleware.RequireRole(string(models.RoleAdmin), string(models.RoleSecurity)))
	{
		staff.GET("/passes", passHandler.GetPasses)
		staff.PATCH("/passes/:id/status", passHandler.UpdateStatus)
		staff.GET("/reports/history", reportHandler.GetHistory)
		staff.GET("/reports/history/export", reportHandler.ExportHistory)
		staff.GET("/ws/clients", wsHandler.GetConnectedClients)
		staff.DELETE("/ws/clients/:clientId", wsHandler.DisconnectClient)
	}

	admin := protected.Group("", middleware.RequireRole(string(models.RoleAdmin)))
	{
		admin.GET("/users", viewHandler.GetUsers)
		admin.GET("/reports/visitors", reportHandler.GetVisitors)
	}
}
