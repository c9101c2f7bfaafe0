package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/feed"
	"github.com/lysyi3m/curator/app/ingest"
	"github.com/lysyi3m/curator/app/tasks"
)

const (
	defaultArticleLimit = 50
	maxArticleLimit     = 200
)

func NewHandler(feedRepo database.FeedRepository, articleRepo database.ArticleRepository,
	runner tasks.Runner, scheduler tasks.TaskSchedulerInterface, cache HealthReporter) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		runner:      runner,
		scheduler:   scheduler,
		cache:       cache,
	}
}

// CronRefreshFeeds runs a system-wide ingestion. The run outlives a caller
// that disconnects early.
func (h *Handler) CronRefreshFeeds(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())

	result, err := h.runner.RunAll(ctx)
	if err != nil {
		slog.Error("Scheduled refresh failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, cronResponse{
		Success: true,
		Message: fmt.Sprintf("Feeds refreshed, %d new articles", result.Count),
		Details: result,
	})
}

// RefreshFeeds runs ingestion over the caller's feeds. With ?async=true the
// run is queued and a task reference is returned instead.
func (h *Handler) RefreshFeeds(c *gin.Context) {
	userID := c.GetString(userIDKey)

	if async, _ := strconv.ParseBool(c.Query("async")); async && h.scheduler != nil {
		task := tasks.NewRefreshFeedsTask(h.runner, userID)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing refresh task", "user", userID, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "Failed to enqueue refresh task",
			})
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"task": gin.H{
				"id":   task.ID,
				"type": task.Type,
			},
		})
		return
	}

	result, err := h.runner.RunForUser(c.Request.Context(), userID)
	if errors.Is(err, ingest.ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Refresh failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	userID := c.GetString(userIDKey)

	sources, err := h.feedRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	feeds := make([]feedResponse, 0, len(sources))
	for _, src := range sources {
		feeds = append(feeds, newFeedResponse(src))
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) CreateFeed(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := feed.ValidateURL(req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	src, err := h.feedRepo.Subscribe(c.Request.Context(), database.FeedSource{
		UserID:   userID,
		URL:      req.URL,
		Name:     req.Name,
		Category: req.Category,
	})
	if err != nil {
		slog.Error("Database error", "operation", "subscribe", "user", userID, "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, newFeedResponse(*src))
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	userID := c.GetString(userIDKey)
	feedID := c.Param("id")

	err := h.feedRepo.Unsubscribe(c.Request.Context(), userID, feedID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "unsubscribe", "user", userID, "feed_id", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListArticles(c *gin.Context) {
	userID := c.GetString(userIDKey)

	limit := defaultArticleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxArticleLimit)
	}

	articles, err := h.articleRepo.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_articles", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, newArticleResponse(a))
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": out,
		"total":    len(out),
	})
}

func (h *Handler) ToggleLike(c *gin.Context) {
	userID := c.GetString(userIDKey)
	articleID := c.Param("id")

	liked, err := h.articleRepo.ToggleLike(c.Request.Context(), userID, articleID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "toggle_like", "user", userID, "article_id", articleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": articleID, "liked": liked})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.Count(ctx); err == nil {
		health["feeds"] = feedCount
	} else {
		health["status"] = "degraded"
	}

	if articleCount, err := h.articleRepo.Count(ctx); err == nil {
		health["articles"] = articleCount
	}

	if h.cache != nil {
		health["cache"] = h.cache.Health(ctx)
	}

	c.JSON(http.StatusOK, health)
}
