package ingest

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/curator/app/database"
)

// Gate answers whether an article already exists for a user and link. The
// seen cache is consulted first; the article table is authoritative.
type Gate struct {
	articles database.ArticleRepository
	seen     SeenCache
}

func NewGate(articles database.ArticleRepository, seen SeenCache) *Gate {
	return &Gate{articles: articles, seen: seen}
}

func (g *Gate) Exists(ctx context.Context, userID, link string) (bool, error) {
	if g.seen != nil {
		seen, err := g.seen.Seen(ctx, userID, link)
		if err != nil {
			slog.Warn("Seen cache lookup failed", "user", userID, "link", link, "error", err)
		} else if seen {
			return true, nil
		}
	}

	exists, err := g.articles.Exists(ctx, userID, link)
	if err != nil {
		return false, err
	}

	if exists {
		g.Remember(ctx, userID, link)
	}

	return exists, nil
}

func (g *Gate) Remember(ctx context.Context, userID, link string) {
	if g.seen == nil {
		return
	}
	if err := g.seen.Mark(ctx, userID, link); err != nil {
		slog.Warn("Seen cache update failed", "user", userID, "link", link, "error", err)
	}
}
