package database

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("record not found")

// FeedSource is one user's subscription to an external RSS/Atom URL.
type FeedSource struct {
	ID        string
	UserID    string
	URL       string
	Name      string
	Category  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ArticleStatus string

const StatusReview ArticleStatus = "REVIEW"

// Article is a deduplicated, enriched record; (UserID, Link) is unique.
type Article struct {
	ID          string
	UserID      string
	FeedID      string // Back-reference only, not an ownership edge
	Title       string
	Link        string
	Content     string
	Summary     string
	ViralScore  int // 0-10
	PublishedAt time.Time
	Status      ArticleStatus
	Liked       bool
	CreatedAt   time.Time
}

// CreateOutcome reports what an insert did without making callers inspect driver errors.
type CreateOutcome int

const (
	OutcomeFailed CreateOutcome = iota
	OutcomeCreated
	OutcomeAlreadyExists
)

func (o CreateOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	default:
		return "failed"
	}
}
