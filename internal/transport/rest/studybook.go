package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/studybook"
)

type studyBookService interface {
	Create(ctx context.Context, input studybook.CreateInput) (*domain.StudyBook, error)
	Get(ctx context.Context, bookID uuid.UUID) (*domain.StudyBook, error)
	List(ctx context.Context, input studybook.ListInput) ([]*domain.StudyBook, int, error)
	Update(ctx context.Context, input studybook.UpdateInput) (*domain.StudyBook, error)
	Delete(ctx context.Context, bookID uuid.UUID) error
}

// StudyBookHandler serves study book REST endpoints.
type StudyBookHandler struct {
	svc studyBookService
	log *slog.Logger
}

// NewStudyBookHandler creates a StudyBookHandler.
func NewStudyBookHandler(svc studyBookService, logger *slog.Logger) *StudyBookHandler {
	return &StudyBookHandler{svc: svc, log: logger.With("handler", "studybook")}
}

type studyBookRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type studyBookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type studyBookListResponse struct {
	Items      []studyBookResponse `json:"items"`
	TotalCount int                 `json:"total_count"`
}

// Create handles POST /api/v1/study-books.
func (h *StudyBookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studyBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.svc.Create(r.Context(), studybook.CreateInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudyBookResponse(book))
}

// Get handles GET /api/v1/study-books/{id}.
func (h *StudyBookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudyBookResponse(book))
}

// List handles GET /api/v1/study-books.
func (h *StudyBookHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	books, total, err := h.svc.List(r.Context(), studybook.ListInput{Limit: limit, Offset: offset})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]studyBookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, toStudyBookResponse(b))
	}
	writeJSON(w, http.StatusOK, studyBookListResponse{Items: items, TotalCount: total})
}

// Update handles PUT /api/v1/study-books/{id}.
func (h *StudyBookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req studyBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.svc.Update(r.Context(), studybook.UpdateInput{
		StudyBookID: id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudyBookResponse(book))
}

// Delete handles DELETE /api/v1/study-books/{id}.
func (h *StudyBookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toStudyBookResponse(b *domain.StudyBook) studyBookResponse {
	return studyBookResponse{
		ID:          b.ID.String(),
		Title:       b.Title,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
