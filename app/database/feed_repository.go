package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var feedColumns = []string{"id", "user_id", "url", "name", "category", "active", "created_at", "updated_at"}

type SQLFeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *SQLFeedRepository {
	return &SQLFeedRepository{db: db}
}

// ListActive returns every active subscription across all users.
func (r *SQLFeedRepository) ListActive(ctx context.Context) ([]FeedSource, error) {
	return r.list(ctx, sq.Eq{"active": true})
}

func (r *SQLFeedRepository) ListActiveByUser(ctx context.Context, userID string) ([]FeedSource, error) {
	return r.list(ctx, sq.Eq{"active": true, "user_id": userID})
}

func (r *SQLFeedRepository) ListByUser(ctx context.Context, userID string) ([]FeedSource, error) {
	return r.list(ctx, sq.Eq{"user_id": userID})
}

func (r *SQLFeedRepository) list(ctx context.Context, where sq.Eq) ([]FeedSource, error) {
	query, args, err := r.db.builder().
		Select(feedColumns...).
		From("feed_sources").
		Where(where).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build feed query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []FeedSource
	for rows.Next() {
		var feed FeedSource
		if err := rows.Scan(&feed.ID, &feed.UserID, &feed.URL, &feed.Name, &feed.Category,
			&feed.Active, &feed.CreatedAt, &feed.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// Subscribe inserts a subscription or reactivates and renames an existing one
// for the same (user, URL) pair.
func (r *SQLFeedRepository) Subscribe(ctx context.Context, source FeedSource) (*FeedSource, error) {
	source.UserID = strings.TrimSpace(source.UserID)
	source.URL = strings.TrimSpace(source.URL)
	if source.UserID == "" || source.URL == "" {
		return nil, fmt.Errorf("user and URL are required")
	}
	if source.Name == "" {
		source.Name = source.URL
	}

	now := time.Now().UTC()
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	source.Active = true
	source.CreatedAt = now
	source.UpdatedAt = now

	query, args, err := r.db.builder().
		Insert("feed_sources").
		Columns(feedColumns...).
		Values(source.ID, source.UserID, source.URL, source.Name, source.Category,
			source.Active, source.CreatedAt, source.UpdatedAt).
		Suffix(`ON CONFLICT (user_id, url) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
			RETURNING id`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subscribe query: %w", err)
	}

	var id string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to upsert feed source: %w", err)
	}

	return r.get(ctx, id)
}

func (r *SQLFeedRepository) get(ctx context.Context, id string) (*FeedSource, error) {
	feeds, err := r.list(ctx, sq.Eq{"id": id})
	if err != nil {
		return nil, err
	}
	if len(feeds) == 0 {
		return nil, ErrNotFound
	}
	return &feeds[0], nil
}

// Unsubscribe deactivates a subscription; its articles are kept.
func (r *SQLFeedRepository) Unsubscribe(ctx context.Context, userID, feedID string) error {
	query, args, err := r.db.builder().
		Update("feed_sources").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": feedID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build unsubscribe query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deactivate feed source: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *SQLFeedRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "feed_sources")
}

func count(ctx context.Context, db *DB, table string) (int, error) {
	query, args, err := db.builder().Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int
	err = db.QueryRowContext(ctx, query, args...).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
