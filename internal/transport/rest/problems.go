package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

type problemsService interface {
	Languages(ctx context.Context) []string
	ProblemsForLanguage(ctx context.Context, language string) ([]domain.Problem, error)
	Clear(ctx context.Context)
}

// ProblemsHandler serves the built-in practice problem catalog.
type ProblemsHandler struct {
	svc problemsService
	log *slog.Logger
}

// NewProblemsHandler creates a ProblemsHandler.
func NewProblemsHandler(svc problemsService, logger *slog.Logger) *ProblemsHandler {
	return &ProblemsHandler{svc: svc, log: logger.With("handler", "problems")}
}

type languagesResponse struct {
	Languages []string `json:"languages"`
}

type problemsResponse struct {
	Language string           `json:"language"`
	Problems []domain.Problem `json:"problems"`
}

// Languages handles GET /api/v1/problems/languages.
func (h *ProblemsHandler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languagesResponse{Languages: h.svc.Languages(r.Context())})
}

// ForLanguage handles GET /api/v1/problems/{language}. Unknown languages
// return an empty list, not an error.
func (h *ProblemsHandler) ForLanguage(w http.ResponseWriter, r *http.Request) {
	language := r.PathValue("language")

	ps, err := h.svc.ProblemsForLanguage(r.Context(), language)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, problemsResponse{Language: language, Problems: ps})
}

// ClearCache handles POST /api/v1/problems/cache/clear.
func (h *ProblemsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.svc.Clear(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
