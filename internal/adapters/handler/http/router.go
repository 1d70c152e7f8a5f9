package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/hsu-emily/punchie-pass/internal/adapters/blob"
	"github.com/hsu-emily/punchie-pass/internal/adapters/handler/http/middleware"
	"github.com/hsu-emily/punchie-pass/internal/core/services"
)

type RouterDependencies struct {
	AuthHandler    *AuthHandler
	HabitHandler   *HabitHandler
	CardHandler    *CardHandler
	JournalHandler *JournalHandler
	TokenService   *services.TokenService
	DB             *sqlx.DB
	Redis          *redis.Client

	// StaticBlobs is set in dev mode when the in-memory blob store is active,
	// so the share URLs it issues resolve against this server.
	StaticBlobs *blob.MemoryStore

	StartTime time.Time
}

// serveStaticBlob hands out objects from the in-memory blob store under the
// /static prefix the store's public URLs point at.
func serveStaticBlob(store *blob.MemoryStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.TrimPrefix(c.Param("object"), "/")

		data, contentType, ok := store.Object(path)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
			return
		}

		c.Data(http.StatusOK, contentType, data)
	}
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Redis != nil {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, 100, 1*time.Minute))
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		if deps.DB == nil || deps.DB.Ping() != nil {
			dbStatus = "unreachable"
		}

		redisStatus := "connected"
		if deps.Redis == nil || deps.Redis.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "unreachable"
		}

		statusCode := 200
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	if deps.StaticBlobs != nil {
		router.GET("/static/*object", serveStaticBlob(deps.StaticBlobs))
	}

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.CardHandler.RegisterRoutes(protected)
		deps.JournalHandler.RegisterRoutes(protected)
	}

	return router
}
