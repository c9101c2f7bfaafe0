package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var articleColumns = []string{
	"id", "user_id", "feed_id", "title", "link", "content", "summary",
	"viral_score", "published_at", "status", "liked", "created_at",
}

const userLinkConstraint = "articles_user_link_key"

type SQLArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// Exists reports whether the user already has an article for the link.
func (r *SQLArticleRepository) Exists(ctx context.Context, userID, link string) (bool, error) {
	query, args, err := r.db.builder().
		Select("1").
		From("articles").
		Where(sq.Eq{"user_id": userID, "link": link}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}

	return true, nil
}

// Create inserts the article unless (user, link) is already taken. A lost race
// against a concurrent run is reported as OutcomeAlreadyExists, not an error.
func (r *SQLArticleRepository) Create(ctx context.Context, article *Article) (CreateOutcome, error) {
	if article.UserID == "" || article.Link == "" || article.Title == "" {
		return OutcomeFailed, fmt.Errorf("article requires user, link and title")
	}
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.Status == "" {
		article.Status = StatusReview
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = article.CreatedAt
	}

	query, args, err := r.db.builder().
		Insert("articles").
		Columns(articleColumns...).
		Values(article.ID, article.UserID, article.FeedID, article.Title, article.Link,
			article.Content, article.Summary, article.ViralScore, article.PublishedAt.UTC(),
			string(article.Status), article.Liked, article.CreatedAt).
		Suffix("ON CONFLICT (user_id, link) DO NOTHING").
		ToSql()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to build insert query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUserLinkConflict(err) {
			return OutcomeAlreadyExists, nil
		}
		return OutcomeFailed, fmt.Errorf("failed to insert article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return OutcomeAlreadyExists, nil
	}

	return OutcomeCreated, nil
}

func (r *SQLArticleRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := r.db.builder().
		Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("published_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		var status string
		if err := rows.Scan(&a.ID, &a.UserID, &a.FeedID, &a.Title, &a.Link, &a.Content, &a.Summary,
			&a.ViralScore, &a.PublishedAt, &status, &a.Liked, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		a.Status = ArticleStatus(status)
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

// ToggleLike flips the like flag and returns the new value.
func (r *SQLArticleRepository) ToggleLike(ctx context.Context, userID, articleID string) (bool, error) {
	owned := sq.Eq{"id": articleID, "user_id": userID}

	query, args, err := r.db.builder().
		Update("articles").
		Set("liked", sq.Expr("NOT liked")).
		Where(owned).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build like query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	} else if affected == 0 {
		return false, ErrNotFound
	}

	query, args, err = r.db.builder().Select("liked").From("articles").Where(owned).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build like lookup: %w", err)
	}

	var liked bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&liked); err != nil {
		return false, fmt.Errorf("failed to read like flag: %w", err)
	}

	return liked, nil
}

func (r *SQLArticleRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "articles")
}

// isUserLinkConflict matches only the (user_id, link) constraint. Other
// unique violations, such as an id collision, are real failures.
func isUserLinkConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == userLinkConstraint
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE &&
			strings.Contains(liteErr.Error(), "articles.user_id, articles.link")
	}

	return false
}
