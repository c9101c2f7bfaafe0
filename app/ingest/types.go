package ingest

import "errors"

var ErrUnauthenticated = errors.New("authentication required")

type Stage string

const (
	StageFetch   Stage = "fetch"
	StageDedup   Stage = "dedup"
	StagePersist Stage = "persist"
)

// FeedError records a recovered failure. Link is set for item-scoped stages.
type FeedError struct {
	FeedID  string `json:"feed_id"`
	URL     string `json:"url"`
	Stage   Stage  `json:"stage"`
	Link    string `json:"link,omitempty"`
	Message string `json:"message"`
}

// Result is the outcome of one run. Count is the number of articles created,
// not the number of items examined.
type Result struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Errors  []FeedError `json:"errors,omitempty"`
}
