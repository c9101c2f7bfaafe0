package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/enrich"
	"github.com/lysyi3m/curator/app/feed"
)

type memFeedRepo struct {
	feeds   []database.FeedSource
	listErr error
}

func (r *memFeedRepo) ListActive(ctx context.Context) ([]database.FeedSource, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []database.FeedSource
	for _, f := range r.feeds {
		if f.Active {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFeedRepo) ListActiveByUser(ctx context.Context, userID string) ([]database.FeedSource, error) {
	all, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var out []database.FeedSource
	for _, f := range all {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFeedRepo) ListByUser(ctx context.Context, userID string) ([]database.FeedSource, error) {
	return r.ListActiveByUser(ctx, userID)
}

func (r *memFeedRepo) Count(ctx context.Context) (int, error) {
	return len(r.feeds), nil
}

func (r *memFeedRepo) Subscribe(ctx context.Context, source database.FeedSource) (*database.FeedSource, error) {
	return nil, errors.New("not implemented")
}

func (r *memFeedRepo) Unsubscribe(ctx context.Context, userID, feedID string) error {
	return errors.New("not implemented")
}

type memArticleRepo struct {
	mu        sync.Mutex
	articles  map[string]database.Article
	order     []string
	failLinks map[string]bool
	seq       int
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{articles: map[string]database.Article{}, failLinks: map[string]bool{}}
}

func articleKey(userID, link string) string {
	return userID + "|" + link
}

func (r *memArticleRepo) Exists(ctx context.Context, userID, link string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.articles[articleKey(userID, link)]
	return ok, nil
}

func (r *memArticleRepo) Create(ctx context.Context, article *database.Article) (database.CreateOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failLinks[article.Link] {
		return database.OutcomeFailed, errors.New("disk full")
	}

	key := articleKey(article.UserID, article.Link)
	if _, ok := r.articles[key]; ok {
		return database.OutcomeAlreadyExists, nil
	}

	r.seq++
	article.ID = fmt.Sprintf("article-%d", r.seq)
	r.articles[key] = *article
	r.order = append(r.order, key)
	return database.OutcomeCreated, nil
}

func (r *memArticleRepo) ListByUser(ctx context.Context, userID string, limit int) ([]database.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []database.Article
	for _, key := range r.order {
		if a := r.articles[key]; a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memArticleRepo) ToggleLike(ctx context.Context, userID, articleID string) (bool, error) {
	return false, errors.New("not implemented")
}

func (r *memArticleRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.articles), nil
}

func (r *memArticleRepo) all() []database.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]database.Article, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.articles[key])
	}
	return out
}

type fakeFetcher struct {
	mu    sync.Mutex
	items map[string][]feed.Candidate
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]feed.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if err := f.errs[url]; err != nil {
		return nil, err
	}
	return f.items[url], nil
}

// recordingEnricher mimics the adapter's fallback for titles listed in fail.
type recordingEnricher struct {
	mu     sync.Mutex
	titles []string
	fail   map[string]bool
	score  int
}

func (e *recordingEnricher) Analyze(ctx context.Context, title, content string) enrich.Enrichment {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.titles = append(e.titles, title)

	if e.fail[title] {
		return enrich.Enrichment{Summary: enrich.FailedSummary, Score: 0}
	}
	return enrich.Enrichment{Summary: "Summary of " + title, Score: e.score}
}

type fakeExtractor struct {
	content string
	err     error
	links   []string
}

func (e *fakeExtractor) Extract(ctx context.Context, link string) (string, error) {
	e.links = append(e.links, link)
	return e.content, e.err
}

type fakePublisher struct {
	mu       sync.Mutex
	articles []string
	err      error
}

func (p *fakePublisher) PublishArticleCreated(ctx context.Context, article *database.Article) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.articles = append(p.articles, article.ID)
	return p.err
}

type memSeenCache struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemSeenCache() *memSeenCache {
	return &memSeenCache{seen: map[string]bool{}}
}

func (c *memSeenCache) Seen(ctx context.Context, userID, link string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	return c.seen[articleKey(userID, link)], nil
}

func (c *memSeenCache) Mark(ctx context.Context, userID, link string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.seen[articleKey(userID, link)] = true
	return nil
}
