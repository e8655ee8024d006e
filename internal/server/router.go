package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/reposcribe/internal/server/handler"
	"github.com/sevigo/reposcribe/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and
// the read-only repository-status API routes.
func NewRouter(store storage.Store, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		statusHandler := handler.NewStatusHandler(store, logger)
		r.Get("/repositories", statusHandler.List)
		r.Get("/repositories/{id}", statusHandler.Get)
	})

	return r
}
