package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/finrag/internal/cache"
	"github.com/cloo-solutions/finrag/internal/config"
	"github.com/cloo-solutions/finrag/internal/database"
	"github.com/cloo-solutions/finrag/internal/loader"
	"github.com/cloo-solutions/finrag/internal/openai"
	"github.com/cloo-solutions/finrag/internal/repository"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/cloo-solutions/finrag/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/spf13/pflag"
)

// initTelemetry starts Sentry when a DSN is configured. Failures only disable tracing.
func initTelemetry(cfg *config.Config) func() {
	if !cfg.HasSentry() {
		return func() {}
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate(),
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}

// openDatabase connects the pool and, unless skipped, brings the schema up to date.
func openDatabase(ctx context.Context, cfg *config.Config, migrate bool) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	if migrate {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return pool, nil
}

func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if !cfg.HasOpenAI() {
		return nil, openai.ErrNoAPIKey
	}
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      goopenai.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
	}), nil
}

// newEmbedder puts the Redis cache in front of client when REDIS_URL is set.
// An unreachable Redis is logged and skipped. The returned func releases the cache.
func newEmbedder(ctx context.Context, cfg *config.Config, client *openai.Client) (service.EmbeddingClient, func()) {
	if !cfg.HasRedis() {
		return client, func() {}
	}

	store, err := cache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("embedding cache disabled: %v", err)
		return client, func() {}
	}
	log.Println("embedding cache enabled")

	cached := cache.NewCachedEmbedder(client, store, cfg.EmbeddingModel, client.Dimensions(), cfg.EmbeddingCacheTTL)
	return cached, func() { _ = store.Close() }
}

// buildLoaders turns the configured sources into loaders, in the order the
// documents should be indexed: PDFs, Wikipedia, news, then quotes.
func buildLoaders(cfg *config.Config, sources config.Sources) []loader.Loader {
	var loaders []loader.Loader

	if !sources.SkipPDFs {
		loaders = append(loaders, loader.NewPDFLoader(cfg.DocsDir))
	}
	if len(sources.WikiTopics) > 0 {
		loaders = append(loaders, loader.NewWikipediaLoader(sources.WikiTopics, loader.HTTPOptions{}))
	}
	if sources.NewsQuery != "" {
		if cfg.HasNewsAPI() {
			loaders = append(loaders, loader.NewNewsLoader(sources.NewsQuery, cfg.NewsAPIKey, loader.HTTPOptions{}))
		} else {
			log.Println("NEWSAPI_KEY not set, skipping news")
		}
	}
	if len(sources.TickerSymbols) > 0 {
		loaders = append(loaders, loader.NewFinanceLoader(sources.TickerSymbols, loader.HTTPOptions{}))
	}

	return loaders
}

func newIndexer(cfg *config.Config, pool *pgxpool.Pool, embedder service.EmbeddingClient, sources config.Sources) (*service.Indexer, error) {
	chunkCfg := service.DefaultChunkConfig()
	chunkCfg.MaxChars = cfg.ChunkSize
	chunkCfg.Overlap = cfg.ChunkOverlap

	chunker, err := service.NewChunker(chunkCfg)
	if err != nil {
		return nil, err
	}

	return service.NewIndexer(chunker, embedder, repository.NewTxRunner(pool), buildLoaders(cfg, sources)...), nil
}

// resolveSources applies a --sources file on top of the environment defaults.
func resolveSources(cfg *config.Config, path string) (config.Sources, error) {
	base := cfg.DefaultSources()
	if path == "" {
		return base, nil
	}
	return config.LoadSources(path, base)
}

// stringFlag returns the flag value only when the user set it.
func stringFlag(flags *pflag.FlagSet, name string) (string, bool) {
	if !flags.Changed(name) {
		return "", false
	}
	v, err := flags.GetString(name)
	return v, err == nil
}
