package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lysyi3m/curator/app/database"
)

const TypeArticleCreated = "article.created"

// ArticleCreated is published once per newly stored article.
type ArticleCreated struct {
	Type        string    `json:"type"`
	ArticleID   string    `json:"article_id"`
	UserID      string    `json:"user_id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	ViralScore  int       `json:"viral_score"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes article events to a Kafka topic. A nil *Publisher drops
// events silently.
type Publisher struct {
	writer messageWriter
	topic  string
}

func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	slog.Info("Kafka publisher initialized", "brokers", brokers, "topic", topic)

	return &Publisher{writer: writer, topic: topic}
}

func NewArticleCreated(article *database.Article) ArticleCreated {
	return ArticleCreated{
		Type:        TypeArticleCreated,
		ArticleID:   article.ID,
		UserID:      article.UserID,
		FeedID:      article.FeedID,
		Title:       article.Title,
		Link:        article.Link,
		ViralScore:  article.ViralScore,
		PublishedAt: article.PublishedAt,
		CreatedAt:   article.CreatedAt,
	}
}

func (p *Publisher) PublishArticleCreated(ctx context.Context, article *database.Article) error {
	if p == nil {
		return nil
	}

	event := NewArticleCreated(article)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ArticleID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.Debug("Published article event", "article_id", event.ArticleID, "topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
