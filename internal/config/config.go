package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8000"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// Uploaded PDFs land here and the PDF loader reads from here.
	DocsDir string `envconfig:"DOCS_DIR" default:"docs/pdfs"`

	OpenAIAPIKey        string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`

	NewsAPIKey    string   `envconfig:"NEWSAPI_KEY"`
	NewsQuery     string   `envconfig:"NEWS_QUERY" default:"stock market"`
	WikiTopics    []string `envconfig:"WIKI_TOPICS" default:"Investment,Financial_management,Risk_management,Stock_market"`
	TickerSymbols []string `envconfig:"TICKER_SYMBOLS" default:"AAPL,MSFT,GOOGL,AMZN,TSLA,NVDA,META,NFLX,INTC,AMD,ADBE,CRM,PFE,JNJ,WMT,DIS,NKE,KO"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Empty disables API key auth on the query/upload/conversation routes.
	APIKey string `envconfig:"API_KEY"`

	AutoReindex         bool          `envconfig:"AUTO_REINDEX" default:"false"`
	ReindexPollInterval time.Duration `envconfig:"REINDEX_POLL_INTERVAL" default:"30s"`
	// A job stuck in processing this long is claimed again.
	ReindexLease time.Duration `envconfig:"REINDEX_LEASE" default:"30m"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"finrag-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Optional question and chunk embedding cache.
	RedisURL          string        `envconfig:"REDIS_URL"`
	EmbeddingCacheTTL time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"168h"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FINRAG", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("failed to process config: CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	return &cfg, nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasNewsAPI() bool {
	return c.NewsAPIKey != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

// TracesSampleRate samples everything in development and 10% elsewhere.
func (c *Config) TracesSampleRate() float64 {
	if c.Environment == "development" {
		return 1.0
	}
	return 0.1
}
