package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/curator/app/cfg"
)

const (
	userIDHeader = "X-User-ID"
	userIDKey    = "user_id"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey, cronSecret string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key, X-User-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey, cronSecret)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey, cronSecret string) {
	r.GET("/health", handler.GetHealth)

	// Scheduled trigger; unauthenticated unless a cron secret is configured
	r.GET("/api/cron/refresh-feeds", cronAuthMiddleware(cronSecret), handler.CronRefreshFeeds)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey), requireUser())
		{
			api.POST("/feeds/refresh", handler.RefreshFeeds)
			api.GET("/feeds", handler.ListFeeds)
			api.POST("/feeds", handler.CreateFeed)
			api.DELETE("/feeds/:id", handler.DeleteFeed)
			api.GET("/articles", handler.ListArticles)
			api.POST("/articles/:id/like", handler.ToggleLike)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health": "/health",
			"cron":   "/api/cron/refresh-feeds",
		}

		if apiAccessKey != "" {
			endpoints["refresh"] = "/api/feeds/refresh (POST, requires X-API-Key and X-User-ID headers)"
			endpoints["feeds"] = "/api/feeds (requires X-API-Key and X-User-ID headers)"
			endpoints["articles"] = "/api/articles (requires X-API-Key and X-User-ID headers)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Curator",
			"version":     cfg.GetVersion(),
			"description": "RSS ingestion with deduplication and AI summaries",
			"endpoints":   endpoints,
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// authMiddleware accepts the API key from X-API-Key or Authorization: Bearer
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")
		if providedKey == "" {
			providedKey = bearerToken(c)
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if providedKey != apiAccessKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}

// requireUser reads the caller identity set by the identity proxy.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(userIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "authentication required",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func cronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret != "" && bearerToken(c) != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "invalid cron secret",
			})
			return
		}

		c.Next()
	}
}
