package api

import (
	"context"
	"time"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/ingest"
	"github.com/lysyi3m/curator/app/tasks"
)

type HealthReporter interface {
	Health(ctx context.Context) map[string]any
}

type Handler struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	runner      tasks.Runner
	scheduler   tasks.TaskSchedulerInterface
	cache       HealthReporter
}

type subscribeRequest struct {
	URL      string `json:"url" binding:"required"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// cronResponse is the body of a successful scheduled trigger.
type cronResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Details *ingest.Result `json:"details"`
}

type feedResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type articleResponse struct {
	ID          string    `json:"id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Content     string    `json:"content,omitempty"`
	Summary     string    `json:"summary"`
	ViralScore  int       `json:"viral_score"`
	PublishedAt time.Time `json:"published_at"`
	Status      string    `json:"status"`
	Liked       bool      `json:"liked"`
	CreatedAt   time.Time `json:"created_at"`
}

func newFeedResponse(f database.FeedSource) feedResponse {
	return feedResponse{
		ID:        f.ID,
		URL:       f.URL,
		Name:      f.Name,
		Category:  f.Category,
		Active:    f.Active,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func newArticleResponse(a database.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		FeedID:      a.FeedID,
		Title:       a.Title,
		Link:        a.Link,
		Content:     a.Content,
		Summary:     a.Summary,
		ViralScore:  a.ViralScore,
		PublishedAt: a.PublishedAt,
		Status:      string(a.Status),
		Liked:       a.Liked,
		CreatedAt:   a.CreatedAt,
	}
}
