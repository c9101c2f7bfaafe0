package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Sample</title>
    <item><title>First</title><link>https://example.com/1</link></item>
    <item><title>Second</title><link>https://example.com/2</link></item>
  </channel>
</rss>`

func TestFetcherFetch(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "Curator-Test/1.0", 5*time.Second)
	items, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "First" {
		t.Errorf("Expected first item 'First', got %s", items[0].Title)
	}
	if gotUA != "Curator-Test/1.0" {
		t.Errorf("Expected user agent to be sent, got %q", gotUA)
	}
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "test", time.Second)
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("Expected status code in error, got: %v", err)
	}
}

func TestFetcherMalformedDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a feed</body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), "test", time.Second)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for malformed feed document")
	}
}

func TestFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewFetcher(server.Client(), NewParser(), "test", 50*time.Millisecond)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}
