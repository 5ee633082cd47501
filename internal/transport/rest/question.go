package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/question"
)

type questionService interface {
	Create(ctx context.Context, input question.CreateQuestionInput) (*domain.Question, error)
	Get(ctx context.Context, input question.GetQuestionInput) (*domain.Question, error)
	List(ctx context.Context, input question.ListQuestionsInput) ([]*domain.Question, int, error)
	GetRandom(ctx context.Context, input question.RandomQuestionInput) (*domain.Question, error)
	Update(ctx context.Context, input question.UpdateQuestionInput) (*domain.Question, error)
	Delete(ctx context.Context, input question.DeleteQuestionInput) error
}

// QuestionHandler serves question REST endpoints.
type QuestionHandler struct {
	svc questionService
	log *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(svc questionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{svc: svc, log: logger.With("handler", "question")}
}

type questionRequest struct {
	Language   string `json:"language"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

type questionResponse struct {
	ID          string    `json:"id"`
	StudyBookID string    `json:"study_book_id"`
	Language    string    `json:"language"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type questionListResponse struct {
	Items      []questionResponse `json:"items"`
	TotalCount int                `json:"total_count"`
}

// Create handles POST /api/v1/study-books/{bookID}/questions.
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathUUID(w, r, "bookID")
	if !ok {
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := h.svc.Create(r.Context(), question.CreateQuestionInput{
		StudyBookID: bookID,
		Language:    req.Language,
		Category:    req.Category,
		Difficulty:  domain.Difficulty(req.Difficulty),
		Question:    req.Question,
		Answer:      req.Answer,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// Get handles GET /api/v1/questions/{id}.
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	q, err := h.svc.Get(r.Context(), question.GetQuestionInput{QuestionID: id})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// List handles GET /api/v1/study-books/{bookID}/questions. Supports
// language, category, difficulty, limit, and offset query parameters.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathUUID(w, r, "bookID")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	input := question.ListQuestionsInput{
		StudyBookID: bookID,
		Language:    queryString(r, "language"),
		Category:    queryString(r, "category"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := queryString(r, "difficulty"); raw != nil {
		d := domain.Difficulty(*raw)
		input.Difficulty = &d
	}

	questions, total, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		items = append(items, toQuestionResponse(q))
	}
	writeJSON(w, http.StatusOK, questionListResponse{Items: items, TotalCount: total})
}

// GetRandom handles GET /api/v1/study-books/{bookID}/questions/random.
func (h *QuestionHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathUUID(w, r, "bookID")
	if !ok {
		return
	}

	q, err := h.svc.GetRandom(r.Context(), question.RandomQuestionInput{StudyBookID: bookID})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// Update handles PUT /api/v1/questions/{id}.
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	q, err := h.svc.Update(r.Context(), question.UpdateQuestionInput{
		QuestionID: id,
		Language:   req.Language,
		Category:   req.Category,
		Difficulty: domain.Difficulty(req.Difficulty),
		Question:   req.Question,
		Answer:     req.Answer,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

// Delete handles DELETE /api/v1/questions/{id}.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), question.DeleteQuestionInput{QuestionID: id}); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toQuestionResponse(q *domain.Question) questionResponse {
	return questionResponse{
		ID:          q.ID.String(),
		StudyBookID: q.StudyBookID.String(),
		Language:    q.Language,
		Category:    q.Category,
		Difficulty:  string(q.Difficulty),
		Question:    q.Question,
		Answer:      q.Answer,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}
