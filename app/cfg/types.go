package cfg

import "time"

type Cfg struct {
	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	// Application configuration
	FeedsDir     string
	Port         string
	APIAccessKey string
	CronSecret   string
	RefreshCron  string

	// Ingestion
	FetchTimeout   time.Duration
	ItemWindow     int
	ExcerptLength  int
	ExtractContent bool

	// Enrichment
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	EnrichRate    float64
	EnrichBurst   int

	// Optional collaborators
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
