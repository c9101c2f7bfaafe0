package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/feed"
)

const DefaultWindow = 5

// Orchestrator runs the ingestion loop: feeds sequentially, and within a feed
// the first Window candidates in source order.
type Orchestrator struct {
	feedRepo    database.FeedRepository
	articleRepo database.ArticleRepository
	gate        *Gate
	fetcher     Fetcher
	enricher    Enricher
	extractor   ContentExtractor
	publisher   Publisher
	window      int
	now         func() time.Time
}

func NewOrchestrator(feedRepo database.FeedRepository, articleRepo database.ArticleRepository, gate *Gate, fetcher Fetcher, enricher Enricher, window int) *Orchestrator {
	if window <= 0 {
		window = DefaultWindow
	}
	if gate == nil {
		gate = NewGate(articleRepo, nil)
	}

	return &Orchestrator{
		feedRepo:    feedRepo,
		articleRepo: articleRepo,
		gate:        gate,
		fetcher:     fetcher,
		enricher:    enricher,
		window:      window,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithContentExtractor fills empty item content from the linked page.
func (o *Orchestrator) WithContentExtractor(extractor ContentExtractor) *Orchestrator {
	o.extractor = extractor
	return o
}

func (o *Orchestrator) WithPublisher(publisher Publisher) *Orchestrator {
	o.publisher = publisher
	return o
}

// RunForUser ingests the active feeds of one user.
func (o *Orchestrator) RunForUser(ctx context.Context, userID string) (*Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	feeds, err := o.feedRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds for user %s: %w", userID, err)
	}

	return o.run(ctx, "user:"+userID, feeds)
}

// RunAll ingests every active feed. Articles belong to each feed's owner.
func (o *Orchestrator) RunAll(ctx context.Context) (*Result, error) {
	feeds, err := o.feedRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	return o.run(ctx, "all", feeds)
}

func (o *Orchestrator) run(ctx context.Context, scope string, feeds []database.FeedSource) (*Result, error) {
	start := time.Now()
	result := &Result{Success: true}

	for _, src := range feeds {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run interrupted: %w", err)
		}
		o.processFeed(ctx, src, result)
	}

	slog.Info("Run completed",
		"scope", scope,
		"feeds", len(feeds),
		"new", result.Count,
		"errors", len(result.Errors),
		"duration", time.Since(start))

	return result, nil
}

func (o *Orchestrator) processFeed(ctx context.Context, src database.FeedSource, result *Result) {
	items, err := o.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		slog.Warn("Feed fetch failed, skipping", "feed_id", src.ID, "url", src.URL, "error", err)
		result.Errors = append(result.Errors, FeedError{
			FeedID:  src.ID,
			URL:     src.URL,
			Stage:   StageFetch,
			Message: err.Error(),
		})
		return
	}

	recent := items[:min(len(items), o.window)]

	newCount := 0
	skipped := 0
	for _, item := range recent {
		if o.processItem(ctx, src, item, result) {
			newCount++
		} else {
			skipped++
		}
	}
	result.Count += newCount

	slog.Info("Feed processed",
		"feed_id", src.ID,
		"user", src.UserID,
		"url", src.URL,
		"total", len(items),
		"considered", len(recent),
		"skipped", skipped,
		"new", newCount)
}

// processItem reports whether a new article was created.
func (o *Orchestrator) processItem(ctx context.Context, src database.FeedSource, item feed.Candidate, result *Result) bool {
	if !item.Valid() {
		return false
	}

	exists, err := o.gate.Exists(ctx, src.UserID, item.Link)
	if err != nil {
		slog.Warn("Duplicate check failed, skipping item", "feed_id", src.ID, "link", item.Link, "error", err)
		result.Errors = append(result.Errors, itemError(src, item, StageDedup, err))
		return false
	}
	if exists {
		return false
	}

	content := item.Content
	if content == "" && o.extractor != nil {
		extracted, err := o.extractor.Extract(ctx, item.Link)
		if err != nil {
			slog.Debug("Content extraction failed", "link", item.Link, "error", err)
		} else {
			content = extracted
		}
	}

	enrichment := o.enricher.Analyze(ctx, item.Title, content)

	now := o.now()
	publishedAt := now
	if item.PublishedAt != nil {
		publishedAt = *item.PublishedAt
	}

	article := &database.Article{
		UserID:      src.UserID,
		FeedID:      src.ID,
		Title:       item.Title,
		Link:        item.Link,
		Content:     content,
		Summary:     enrichment.Summary,
		ViralScore:  enrichment.Score,
		PublishedAt: publishedAt,
		Status:      database.StatusReview,
		CreatedAt:   now,
	}

	outcome, err := o.articleRepo.Create(ctx, article)
	switch outcome {
	case database.OutcomeCreated:
		o.gate.Remember(ctx, src.UserID, item.Link)
		o.publish(ctx, article)
		return true
	case database.OutcomeAlreadyExists:
		slog.Debug("Article created concurrently, skipping", "user", src.UserID, "link", item.Link)
		o.gate.Remember(ctx, src.UserID, item.Link)
		return false
	default:
		if err == nil {
			err = fmt.Errorf("article not stored")
		}
		slog.Error("Failed to store article", "feed_id", src.ID, "link", item.Link, "error", err)
		result.Errors = append(result.Errors, itemError(src, item, StagePersist, err))
		return false
	}
}

func (o *Orchestrator) publish(ctx context.Context, article *database.Article) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.PublishArticleCreated(ctx, article); err != nil {
		slog.Warn("Failed to publish article event", "article_id", article.ID, "error", err)
	}
}

func itemError(src database.FeedSource, item feed.Candidate, stage Stage, err error) FeedError {
	return FeedError{
		FeedID:  src.ID,
		URL:     src.URL,
		Stage:   stage,
		Link:    item.Link,
		Message: err.Error(),
	}
}
