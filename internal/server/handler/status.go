// Package handler provides HTTP handlers for the documentation pipeline's
// read-only status API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sevigo/reposcribe/internal/storage"
)

// StatusHandler exposes Repository rows read-only, so an external
// operator surface can render status and error per spec §7.
type StatusHandler struct {
	store  storage.Store
	logger *slog.Logger
}

// NewStatusHandler creates a new status handler backed by store.
func NewStatusHandler(store storage.Store, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{store: store, logger: logger}
}

// List returns every known Repository row.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	repos, err := h.store.GetAllRepositories(r.Context())
	if err != nil {
		h.logger.Error("failed to list repositories", "error", err)
		http.Error(w, "failed to list repositories", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, repos)
}

// Get returns a single Repository row by id.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	repo, err := h.store.GetRepository(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "repository not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get repository", "repository.id", id, "error", err)
		http.Error(w, "failed to get repository", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, repo)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
