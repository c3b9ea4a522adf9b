package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/finrag/internal/api/handlers"
	"github.com/cloo-solutions/finrag/internal/api/middleware"
	"github.com/cloo-solutions/finrag/internal/config"
	"github.com/cloo-solutions/finrag/internal/jobs"
	"github.com/cloo-solutions/finrag/internal/repository"
	"github.com/cloo-solutions/finrag/internal/server"
	"github.com/cloo-solutions/finrag/internal/service"
	"github.com/cloo-solutions/finrag/internal/storage"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the finrag API server answering questions over the indexed documents",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8000", "Port to listen on (overrides PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("sources", "", "YAML file listing ingestion sources for auto reindex")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if port, ok := stringFlag(cmd.Flags(), "port"); ok {
		cfg.Port = port
	}

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	pool, err := openDatabase(ctx, cfg, !noMigrate)
	if err != nil {
		return err
	}
	defer pool.Close()

	aiClient, err := newOpenAIClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create openai client: %w", err)
	}
	embedder, closeCache := newEmbedder(ctx, cfg, aiClient)
	defer closeCache()

	if err := os.MkdirAll(cfg.DocsDir, 0755); err != nil {
		return fmt.Errorf("failed to create docs dir: %w", err)
	}

	chunkRepo := repository.NewChunkRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	indexJobRepo := repository.NewIndexJobRepository(pool).WithClaimLease(cfg.ReindexLease)

	querySvc := service.NewQueryService(
		embedder,
		service.NewRetriever(chunkRepo),
		service.NewSynthesizer(aiClient),
		conversationRepo,
	)
	conversationSvc := service.NewConversationService(conversationRepo)
	uploadSvc := service.NewUploadService(storage.NewDiskStore(cfg.DocsDir))

	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		uploadSvc = uploadSvc.WithArchiver(s3Client)
	}

	var reindexWorker *jobs.Worker
	if cfg.AutoReindex {
		sourcesPath, _ := cmd.Flags().GetString("sources")
		sources, err := resolveSources(cfg, sourcesPath)
		if err != nil {
			return err
		}
		indexer, err := newIndexer(cfg, pool, embedder, sources)
		if err != nil {
			return fmt.Errorf("failed to create indexer: %w", err)
		}

		uploadSvc = uploadSvc.WithReindex(indexJobRepo, &service.DefaultUUIDGenerator{})
		reindexWorker = jobs.NewWorker(jobs.NewReindexWorker(indexJobRepo, indexer), cfg.ReindexPollInterval)
		go reindexWorker.Start(ctx)
		log.Println("reindex worker started")
	}

	var validator middleware.AuthValidator
	if cfg.APIKey != "" {
		validator = middleware.StaticKey(cfg.APIKey)
	} else {
		log.Println("API_KEY not set, API routes are open")
	}

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:       validator,
		QueryHandler:        handlers.NewQueryHandler(querySvc),
		ConversationHandler: handlers.NewConversationHandler(conversationSvc),
		UploadHandler:       handlers.NewUploadHandler(uploadSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Println("shutting down...")
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	if reindexWorker != nil {
		reindexWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
