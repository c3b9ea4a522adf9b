package server

import (
	"net/http"

	"github.com/cloo-solutions/finrag/internal/api"
	"github.com/cloo-solutions/finrag/internal/api/handlers"
	"github.com/cloo-solutions/finrag/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const defaultMaxBodyBytes int64 = 32 * 1024 * 1024

type RouterConfig struct {
	// AuthValidator guards the API routes when set. Nil leaves them open.
	AuthValidator       middleware.AuthValidator
	QueryHandler        *handlers.QueryHandler
	ConversationHandler *handlers.ConversationHandler
	UploadHandler       *handlers.UploadHandler
	MaxBodyBytes        int64
	AllowedOrigins      []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthValidator != nil {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Post("/query", cfg.QueryHandler.Ask)
		r.Get("/conversations", cfg.ConversationHandler.List)
		r.Post("/upload", cfg.UploadHandler.Upload)
	})

	return r
}
