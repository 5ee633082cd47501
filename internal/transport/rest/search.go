package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/search"
)

type searchService interface {
	Search(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error)
	RebuildIndex(ctx context.Context) (int, error)
	IndexSize(ctx context.Context) (int, error)
}

// SearchHandler serves full-text search REST endpoints.
type SearchHandler struct {
	svc searchService
	log *slog.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc searchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, log: logger.With("handler", "search")}
}

type rebuildResponse struct {
	IndexedCount int `json:"indexed_count"`
}

type indexStatsResponse struct {
	EntryCount int `json:"entry_count"`
}

// Search handles GET /api/v1/search?q=...&limit=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryIntPtr(w, r, "limit")
	if !ok {
		return
	}

	input := search.SearchInput{Query: r.URL.Query().Get("q")}
	if limit != nil {
		// The service treats a zero limit as "use the default", so an
		// explicit out-of-range value must be rejected here.
		if *limit < 1 {
			writeError(w, http.StatusBadRequest, "limit must be at least 1")
			return
		}
		input.Limit = *limit
	}

	resp, err := h.svc.Search(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Rebuild handles POST /api/v1/search/rebuild.
func (h *SearchHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RebuildIndex(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rebuildResponse{IndexedCount: n})
}

// Stats handles GET /api/v1/search/stats.
func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.IndexSize(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, indexStatsResponse{EntryCount: n})
}
