package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSeenTTL = 30 * 24 * time.Hour

// SeenCache remembers which article links a user has already ingested. It
// only short-circuits the database lookup, so a nil *SeenCache is valid and
// reports nothing as seen.
type SeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSeenCache(ctx context.Context, addr string, ttl time.Duration) (*SeenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultSeenTTL
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &SeenCache{client: client, ttl: ttl}, nil
}

// GenerateUserKey returns the set key holding a user's seen links.
func GenerateUserKey(userID string) string {
	return fmt.Sprintf("seen:%s", userID)
}

// GenerateLinkMember hashes a link into a fixed-size set member.
func GenerateLinkMember(link string) string {
	hash := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", hash[:16])
}

func (c *SeenCache) Seen(ctx context.Context, userID, link string) (bool, error) {
	if c == nil {
		return false, nil
	}

	ok, err := c.client.SIsMember(ctx, GenerateUserKey(userID), GenerateLinkMember(link)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen link: %w", err)
	}
	return ok, nil
}

func (c *SeenCache) Mark(ctx context.Context, userID, link string) error {
	if c == nil {
		return nil
	}

	key := GenerateUserKey(userID)
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, key, GenerateLinkMember(link))
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark seen link: %w", err)
	}
	return nil
}

func (c *SeenCache) Health(ctx context.Context) map[string]any {
	if c == nil {
		return map[string]any{"status": "disabled"}
	}

	start := time.Now()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return map[string]any{"status": "unhealthy", "error": err.Error()}
	}
	return map[string]any{"status": "healthy", "latency_ms": time.Since(start).Milliseconds()}
}

func (c *SeenCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
