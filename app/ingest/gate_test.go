package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/curator/app/database"
)

func TestGateUsesCacheFirst(t *testing.T) {
	articles := newMemArticleRepo()
	seen := newMemSeenCache()
	seen.Mark(context.Background(), "user-1", "https://a.example/1")

	gate := NewGate(articles, seen)

	exists, err := gate.Exists(context.Background(), "user-1", "https://a.example/1")
	if err != nil || !exists {
		t.Errorf("Expected cached link to exist, got %v, %v", exists, err)
	}
}

func TestGateFallsBackToDatabase(t *testing.T) {
	articles := newMemArticleRepo()
	articles.Create(context.Background(), &database.Article{UserID: "user-1", Link: "https://a.example/1", Title: "One"})
	seen := newMemSeenCache()

	gate := NewGate(articles, seen)

	exists, err := gate.Exists(context.Background(), "user-1", "https://a.example/1")
	if err != nil || !exists {
		t.Fatalf("Expected stored link to exist, got %v, %v", exists, err)
	}
	if !seen.seen[articleKey("user-1", "https://a.example/1")] {
		t.Error("Expected database hit to warm the cache")
	}
}

func TestGateIgnoresCacheErrors(t *testing.T) {
	articles := newMemArticleRepo()
	seen := newMemSeenCache()
	seen.err = errors.New("redis down")

	gate := NewGate(articles, seen)

	exists, err := gate.Exists(context.Background(), "user-1", "https://a.example/new")
	if err != nil {
		t.Errorf("Expected cache error to fall through, got %v", err)
	}
	if exists {
		t.Error("Expected unknown link not to exist")
	}
}

func TestGateScopesByUser(t *testing.T) {
	articles := newMemArticleRepo()
	articles.Create(context.Background(), &database.Article{UserID: "alice", Link: "https://a.example/1", Title: "One"})

	gate := NewGate(articles, nil)

	if exists, _ := gate.Exists(context.Background(), "bob", "https://a.example/1"); exists {
		t.Error("Expected another user's article not to count as duplicate")
	}
}
