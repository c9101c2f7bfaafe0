package ingest

import (
	"context"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/enrich"
	"github.com/lysyi3m/curator/app/feed"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Candidate, error)
}

// Enricher must not fail; fallbacks are its own concern.
type Enricher interface {
	Analyze(ctx context.Context, title, content string) enrich.Enrichment
}

type ContentExtractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

type Publisher interface {
	PublishArticleCreated(ctx context.Context, article *database.Article) error
}

type SeenCache interface {
	Seen(ctx context.Context, userID, link string) (bool, error)
	Mark(ctx context.Context, userID, link string) error
}
