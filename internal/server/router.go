package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridaworks/talentd/internal/api"
	"github.com/meridaworks/talentd/internal/api/handlers"
	"github.com/meridaworks/talentd/internal/api/middleware"
)

type RouterConfig struct {
	SearchHandler  *handlers.SearchHandler
	LinkageHandler *handlers.LinkageHandler
	SystemHandler  *handlers.SystemHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/stats", cfg.SystemHandler.Stats)
	r.Get("/countries", cfg.SystemHandler.Countries)

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/batch-search", cfg.SearchHandler.BatchSearch)
	r.Post("/team", cfg.SearchHandler.Team)

	r.Get("/linkage", cfg.LinkageHandler.Linkage)
	r.Post("/reindex", cfg.LinkageHandler.Reindex)

	return r
}
