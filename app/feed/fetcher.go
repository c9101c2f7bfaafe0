package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const maxFeedSize = 5 << 20

// Fetcher retrieves feed documents over HTTP and parses them into candidates.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string, timeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Fetch downloads and parses the feed at url. Any network, status or parse
// problem fails the whole feed.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Candidate, error) {
	data, err := f.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	metadata, items, err := f.parser.Run(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed parsed",
		"url", url,
		"title", metadata.Title,
		"language", metadata.Language,
		"items", len(items))

	return items, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxFeedSize {
		return nil, fmt.Errorf("feed exceeds %d bytes", maxFeedSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	return data, nil
}
