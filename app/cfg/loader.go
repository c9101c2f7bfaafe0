package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBDriver   string `long:"db-driver" env:"DB_DRIVER" default:"postgres" choice:"postgres" choice:"sqlite" description:"Database driver"`
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"curator" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" description:"Database password"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"curator" description:"Database name"`
	SQLitePath string `long:"sqlite-path" env:"SQLITE_PATH" default:"./curator.db" description:"SQLite database file (sqlite driver only)"`

	// Application configuration
	FeedsDir     string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing per-user subscription files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for user-scoped endpoints (optional)"`
	CronSecret   string `long:"cron-secret" env:"CRON_SECRET" description:"Bearer secret for the scheduled refresh endpoint (optional)"`
	RefreshCron  string `long:"refresh-cron" env:"REFRESH_CRON" description:"Cron spec for built-in system-wide refresh, empty disables (e.g. @every 30m)"`

	// Ingestion
	FetchTimeout   int  `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Feed fetch timeout in seconds"`
	ItemWindow     int  `long:"item-window" env:"ITEM_WINDOW" default:"5" description:"Items considered per feed per run"`
	ExcerptLength  int  `long:"excerpt-length" env:"EXCERPT_LENGTH" default:"1000" description:"Characters of content sent for enrichment"`
	ExtractContent bool `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch article pages for items without content"`

	// Enrichment
	OpenAIKey     string  `long:"openai-key" env:"OPENAI_API_KEY" description:"OpenAI API key, empty enables placeholder enrichment"`
	OpenAIModel   string  `long:"openai-model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"Model used for enrichment"`
	OpenAIBaseURL string  `long:"openai-base-url" env:"OPENAI_BASE_URL" description:"OpenAI-compatible endpoint (optional)"`
	EnrichRate    float64 `long:"enrich-rate" env:"ENRICH_RATE" default:"2" description:"Enrichment requests per second"`
	EnrichBurst   int     `long:"enrich-burst" env:"ENRICH_BURST" default:"1" description:"Enrichment request burst"`

	// Optional collaborators
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the seen-link cache (optional)"`
	KafkaBrokers string `long:"kafka-brokers" env:"KAFKA_BROKERS" description:"Comma-separated Kafka brokers for article events (optional)"`
	KafkaTopic   string `long:"kafka-topic" env:"KAFKA_TOPIC" default:"articles.created" description:"Kafka topic for article events"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Curator/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	return LoadArgsWithGroup(args, "", nil)
}

// LoadArgsWithGroup parses an additional go-flags option group into options,
// for commands that take flags of their own.
func LoadArgsWithGroup(args []string, group string, options any) (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	if options != nil {
		if _, err := parser.AddGroup(group, "", options); err != nil {
			return nil, fmt.Errorf("failed to register %s options: %w", group, err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := fromRaw(raw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (c *Cfg) Validate() error {
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.DBPassword == "" {
		return fmt.Errorf("database password is required for postgres")
	}
	if c.ItemWindow <= 0 {
		return fmt.Errorf("item window must be positive")
	}
	if c.ExcerptLength <= 0 {
		return fmt.Errorf("excerpt length must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.EnrichRate < 0 {
		return fmt.Errorf("enrichment rate must be non-negative")
	}
	return nil
}

func fromRaw(raw rawCfg) *Cfg {
	return &Cfg{
		DBDriver:       raw.DBDriver,
		DBHost:         raw.DBHost,
		DBPort:         raw.DBPort,
		DBUser:         raw.DBUser,
		DBPassword:     raw.DBPassword,
		DBName:         raw.DBName,
		SQLitePath:     raw.SQLitePath,
		FeedsDir:       raw.FeedsDir,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		CronSecret:     raw.CronSecret,
		RefreshCron:    strings.TrimSpace(raw.RefreshCron),
		FetchTimeout:   time.Duration(raw.FetchTimeout) * time.Second,
		ItemWindow:     raw.ItemWindow,
		ExcerptLength:  raw.ExcerptLength,
		ExtractContent: raw.ExtractContent,
		OpenAIKey:      raw.OpenAIKey,
		OpenAIModel:    raw.OpenAIModel,
		OpenAIBaseURL:  raw.OpenAIBaseURL,
		EnrichRate:     raw.EnrichRate,
		EnrichBurst:    raw.EnrichBurst,
		RedisAddr:      raw.RedisAddr,
		KafkaBrokers:   splitList(raw.KafkaBrokers),
		KafkaTopic:     raw.KafkaTopic,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
