package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docuchat-labs/docuchat/internal/api"
	"github.com/docuchat-labs/docuchat/internal/api/handlers"
	"github.com/docuchat-labs/docuchat/internal/api/middleware"
)

type RouterConfig struct {
	// APIKey enables bearer auth on all routes except /health when set
	APIKey           string
	DocumentsHandler *handlers.DocumentsHandler
	AskHandler       *handlers.AskHandler
	HistoryHandler   *handlers.HistoryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// generous enough for multi-megabyte PDF uploads
	const maxBodyBytes int64 = 32 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.APIKey != "" {
			r.Use(middleware.APIKeyAuth(cfg.APIKey))
		}

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentsHandler.Upload)
			r.Get("/", cfg.DocumentsHandler.List)
			r.Delete("/", cfg.DocumentsHandler.Reset)
			r.Get("/jobs/{id}", cfg.DocumentsHandler.GetJob)
			r.Get("/{id}", cfg.DocumentsHandler.Get)
		})

		r.Post("/ask", cfg.AskHandler.Ask)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", cfg.HistoryHandler.List)
			r.Delete("/", cfg.HistoryHandler.Reset)
		})
	})

	return r
}
