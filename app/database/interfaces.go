package database

import "context"

type FeedRepository interface {
	ListActive(ctx context.Context) ([]FeedSource, error)
	ListActiveByUser(ctx context.Context, userID string) ([]FeedSource, error)
	ListByUser(ctx context.Context, userID string) ([]FeedSource, error)
	Count(ctx context.Context) (int, error)

	Subscribe(ctx context.Context, source FeedSource) (*FeedSource, error)
	Unsubscribe(ctx context.Context, userID, feedID string) error
}

type ArticleRepository interface {
	Exists(ctx context.Context, userID, link string) (bool, error)
	Create(ctx context.Context, article *Article) (CreateOutcome, error)

	ListByUser(ctx context.Context, userID string, limit int) ([]Article, error)
	ToggleLike(ctx context.Context, userID, articleID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

var (
	_ FeedRepository    = (*SQLFeedRepository)(nil)
	_ ArticleRepository = (*SQLArticleRepository)(nil)
)
