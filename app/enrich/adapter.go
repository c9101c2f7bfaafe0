package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	PlaceholderSummary = "AI summary unavailable (no API key configured)."
	FailedSummary      = "AI analysis failed."

	MaxScore = 10

	defaultModel         = "gpt-4o-mini"
	defaultExcerptLength = 1000
	defaultTimeout       = 60 * time.Second
)

const systemPrompt = `You analyze articles for a content curation tool.
Given an article title and excerpt, respond with a JSON object only:
{"summary": "<one or two sentence summary>", "viralScore": <integer 0-10 estimating social media virality>}`

// Enrichment is the AI-derived part of an article.
type Enrichment struct {
	Summary string
	Score   int
}

type Config struct {
	APIKey        string
	Model         string
	BaseURL       string // optional, for OpenAI-compatible endpoints
	ExcerptLength int
	Rate          float64 // requests per second, 0 disables limiting
	Burst         int
	Timeout       time.Duration
}

// Adapter wraps the completion endpoint with a fallback policy. Analyze never
// fails: without a key it returns placeholders, on errors a failure marker.
type Adapter struct {
	client  *openai.Client
	model   string
	excerpt int
	timeout time.Duration
	limiter *rate.Limiter
	intn    func(int) int
}

func NewAdapter(cfg Config) *Adapter {
	a := &Adapter{
		model:   cfg.Model,
		excerpt: cfg.ExcerptLength,
		timeout: cfg.Timeout,
		intn:    rand.IntN,
	}
	if a.excerpt <= 0 {
		a.excerpt = defaultExcerptLength
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	if a.model == "" {
		a.model = defaultModel
	}

	if cfg.APIKey != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			cc.BaseURL = cfg.BaseURL
		}
		a.client = openai.NewClientWithConfig(cc)
	}

	if cfg.Rate > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), max(cfg.Burst, 1))
	}

	return a
}

// Enabled reports whether a credential is configured.
func (a *Adapter) Enabled() bool {
	return a.client != nil
}

func (a *Adapter) Analyze(ctx context.Context, title, content string) Enrichment {
	if a.client == nil {
		return Enrichment{Summary: PlaceholderSummary, Score: a.intn(MaxScore + 1)}
	}

	result, err := a.analyze(ctx, title, content)
	if err != nil {
		slog.Warn("Enrichment failed, using fallback", "title", title, "error", err)
		return Enrichment{Summary: FailedSummary, Score: 0}
	}

	return result
}

func (a *Adapter) analyze(ctx context.Context, title, content string) (Enrichment, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return Enrichment{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	excerpt := Truncate(strings.TrimSpace(content), a.excerpt)
	if excerpt == "" {
		excerpt = title
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Title: %s\nContent: %s", title, excerpt)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return Enrichment{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Enrichment{}, fmt.Errorf("chat completion returned no choices")
	}

	return ParseResponse(resp.Choices[0].Message.Content)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
