package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/lysyi3m/curator/app/cache"
	"github.com/lysyi3m/curator/app/cfg"
	"github.com/lysyi3m/curator/app/database"
	"github.com/lysyi3m/curator/app/enrich"
	"github.com/lysyi3m/curator/app/events"
	"github.com/lysyi3m/curator/app/feed"
	"github.com/lysyi3m/curator/app/ingest"
)

// App holds the wired components shared by the server and one-shot commands.
type App struct {
	DB           *database.DB
	FeedRepo     database.FeedRepository
	ArticleRepo  database.ArticleRepository
	Seen         *cache.SeenCache
	Publisher    *events.Publisher
	Enricher     *enrich.Adapter
	Orchestrator *ingest.Orchestrator
	Loader       *feed.SourceLoader
}

func SetupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func DSN(c *cfg.Cfg) string {
	if c.DBDriver == database.DriverSQLite {
		return database.SQLiteDSN(c.SQLitePath)
	}
	return database.PostgresDSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// New connects storage, applies migrations and wires the ingestion pipeline.
// Redis and Kafka are optional; an unreachable Redis disables the cache.
func New(ctx context.Context, c *cfg.Cfg) (*App, error) {
	slog.Debug("Connecting to database", "driver", c.DBDriver)
	db, err := database.NewConnection(c.DBDriver, DSN(c))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "driver", c.DBDriver, "migration_version", version, "dirty", dirty)

	app := &App{
		DB:          db,
		FeedRepo:    database.NewFeedRepository(db),
		ArticleRepo: database.NewArticleRepository(db),
		Loader:      feed.NewSourceLoader(c.FeedsDir),
	}

	if c.RedisAddr != "" {
		seen, err := cache.NewSeenCache(ctx, c.RedisAddr, cache.DefaultSeenTTL)
		if err != nil {
			slog.Warn("Seen cache disabled", "addr", c.RedisAddr, "error", err)
		} else {
			app.Seen = seen
		}
	}

	if len(c.KafkaBrokers) > 0 {
		app.Publisher = events.NewPublisher(c.KafkaBrokers, c.KafkaTopic)
	}

	app.Enricher = enrich.NewAdapter(enrich.Config{
		APIKey:        c.OpenAIKey,
		Model:         c.OpenAIModel,
		BaseURL:       c.OpenAIBaseURL,
		ExcerptLength: c.ExcerptLength,
		Rate:          c.EnrichRate,
		Burst:         c.EnrichBurst,
	})
	if !app.Enricher.Enabled() {
		slog.Warn("OPENAI_API_KEY not set, using placeholder enrichment")
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, feed.NewParser(), c.UserAgent, c.FetchTimeout)

	var seen ingest.SeenCache
	if app.Seen != nil {
		seen = app.Seen
	}

	app.Orchestrator = ingest.NewOrchestrator(
		app.FeedRepo,
		app.ArticleRepo,
		ingest.NewGate(app.ArticleRepo, seen),
		fetcher,
		app.Enricher,
		c.ItemWindow,
	)

	if c.ExtractContent {
		app.Orchestrator.WithContentExtractor(feed.NewContentExtractor(httpClient, c.UserAgent, c.FetchTimeout))
	}
	if app.Publisher != nil {
		app.Orchestrator.WithPublisher(app.Publisher)
	}

	return app, nil
}

func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		slog.Warn("Failed to close event publisher", "error", err)
	}
	if err := a.Seen.Close(); err != nil {
		slog.Warn("Failed to close seen cache", "error", err)
	}
	if err := a.DB.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}
