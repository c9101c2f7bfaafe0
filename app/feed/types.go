package feed

import (
	"time"
)

type Metadata struct {
	Title    string
	Link     string
	Language string
}

// Candidate is one parsed feed entry that has not been persisted yet.
type Candidate struct {
	Title       string
	Link        string
	PublishedAt *time.Time // nil when the source omits a date
	Content     string     // plain text, from content or description
}

// Valid reports whether the candidate carries the fields an article requires.
func (c Candidate) Valid() bool {
	return c.Link != "" && c.Title != ""
}

// Subscription file types

type SubscriptionFile struct {
	UserID string         `yaml:"user_id"`
	Feeds  []Subscription `yaml:"feeds"`
}

type Subscription struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Enabled  *bool  `yaml:"enabled"`
}

func (s Subscription) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}
