package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatepass-backend/internal/api/routes"
	"gatepass-backend/internal/config"
	"gatepass-backend/internal/services"
	"gatepass-backend/internal/websocket"
	"gatepass-backend/pkg/database"
	"gatepass-backend/pkg/events"
	"gatepass-backend/pkg/jwt"
	"gatepass-backend/pkg/logger"
	"gatepass-backend/pkg/ratelimit"
	"gatepass-backend/pkg/redis"
	"gatepass-backend/pkg/store"
	"gatepass-backend/pkg/verifier"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Store backend
	var (
		st          store.Store
		redisClient *redis.Client
		db          *mongo.Database
	)
	switch cfg.Store.Backend {
	case "mongo":
		db, err = database.Connect(cfg.MongoURI, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Disconnect(db.Client(), zapLogger)
		st = store.NewMongoStore(db, cfg.Store.Prefix)
	default:
		redisClient = redis.NewClient(cfg.Redis, zapLogger)
		defer redisClient.Close()

		healthStatus := redisClient.HealthCheck()
		if healthStatus.IsConnected {
			zapLogger.Info("Redis connected", zap.String("addr", healthStatus.ConnectionInfo))
		} else {
			zapLogger.Warn("Redis connection failed, will retry automatically", zap.String("error", healthStatus.Error))
		}
		st = store.NewRedisStore(redisClient, cfg.Store.Prefix)
	}

	// Purpose verifier
	var v verifier.Verifier
	if cfg.Verifier.GeminiAPIKey != "" {
		v, err = verifier.NewGemini(ctx, cfg.Verifier.GeminiAPIKey, cfg.Verifier.Model, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to initialize verifier", zap.Error(err))
		}
	} else {
		zapLogger.Warn("GEMINI_API_KEY not set, using static verifier")
		v = verifier.NewStatic(cfg.Verifier.StaticReasoning)
	}

	manager := services.NewPassManager(st, v, zapLogger)
	manager.SetVerifierTimeout(cfg.Verifier.Timeout)
	if err := manager.Load(ctx); err != nil {
		zapLogger.Fatal("Failed to load state", zap.Error(err))
	}

	// Event fan-out
	wsManager := websocket.NewManager(zapLogger, cfg.AllowedOrigins)
	if err := wsManager.Start(); err != nil {
		zapLogger.Fatal("Failed to start websocket manager", zap.Error(err))
	}
	defer wsManager.Stop()

	notifiers := services.Notifiers{wsManager}
	if cfg.NatsURL != "" {
		bus, err := events.NewNATSEventBus(cfg.NatsURL, zapLogger)
		if err != nil {
			zapLogger.Warn("NATS unavailable, events stay local", zap.Error(err))
		} else {
			defer bus.Close()
			notifiers = append(notifiers, services.NewBusNotifier(bus))
		}
	}
	manager.SetNotifier(notifiers)

	// Rate limiting
	rlConfig := ratelimit.DefaultConfig()
	rlConfig.Enabled = cfg.RateLimit
	var limiter ratelimit.RateLimiter
	if redisClient != nil && redisClient.GetClient() != nil {
		limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), rlConfig)
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(rlConfig)
	}
	defer limiter.Close()

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		zapLogger.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "Retry-After"},
	}

	// Handle wildcard origin for development
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Manager:         manager,
		JWT:             jwt.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiry),
		WebSocket:       wsManager,
		Store:           st,
		Redis:           redisClient,
		DB:              db,
		Limiter:         limiter,
		RateLimitConfig: rlConfig,
		Logger:          zapLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
