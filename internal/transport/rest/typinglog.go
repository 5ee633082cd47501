package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/typinglog"
)

type typingLogService interface {
	Create(ctx context.Context, input typinglog.CreateInput) (*domain.TypingLog, error)
	Get(ctx context.Context, logID uuid.UUID) (*domain.TypingLog, error)
	List(ctx context.Context, input typinglog.ListInput) ([]*domain.TypingLog, int, error)
}

// TypingLogHandler serves typing log REST endpoints.
type TypingLogHandler struct {
	svc typingLogService
	log *slog.Logger
}

// NewTypingLogHandler creates a TypingLogHandler.
func NewTypingLogHandler(svc typingLogService, logger *slog.Logger) *TypingLogHandler {
	return &TypingLogHandler{svc: svc, log: logger.With("handler", "typinglog")}
}

type typingLogRequest struct {
	QuestionID *string `json:"question_id"`
	WPM        int     `json:"wpm"`
	Accuracy   float64 `json:"accuracy"`
	TookMs     int     `json:"took_ms"`
}

type typingLogResponse struct {
	ID         string    `json:"id"`
	QuestionID *string   `json:"question_id,omitempty"`
	WPM        int       `json:"wpm"`
	Accuracy   float64   `json:"accuracy"`
	TookMs     int       `json:"took_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type typingLogListResponse struct {
	Items      []typingLogResponse `json:"items"`
	TotalCount int                 `json:"total_count"`
}

// Create handles POST /api/v1/typing-logs.
func (h *TypingLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req typingLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := typinglog.CreateInput{
		WPM:      req.WPM,
		Accuracy: req.Accuracy,
		TookMs:   req.TookMs,
	}
	if req.QuestionID != nil {
		qid, err := uuid.Parse(*req.QuestionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question_id")
			return
		}
		input.QuestionID = &qid
	}

	tl, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTypingLogResponse(tl))
}

// Get handles GET /api/v1/typing-logs/{id}.
func (h *TypingLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	tl, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTypingLogResponse(tl))
}

// List handles GET /api/v1/typing-logs. An optional question_id query
// parameter narrows the list to one question.
func (h *TypingLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	input := typinglog.ListInput{Limit: limit, Offset: offset}
	if raw := queryString(r, "question_id"); raw != nil {
		qid, err := uuid.Parse(*raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid question_id")
			return
		}
		input.QuestionID = &qid
	}

	logs, total, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]typingLogResponse, 0, len(logs))
	for _, tl := range logs {
		items = append(items, toTypingLogResponse(tl))
	}
	writeJSON(w, http.StatusOK, typingLogListResponse{Items: items, TotalCount: total})
}

func toTypingLogResponse(tl *domain.TypingLog) typingLogResponse {
	resp := typingLogResponse{
		ID:        tl.ID.String(),
		WPM:       tl.WPM,
		Accuracy:  tl.Accuracy,
		TookMs:    tl.TookMs,
		CreatedAt: tl.CreatedAt,
	}
	if tl.QuestionID != nil {
		s := tl.QuestionID.String()
		resp.QuestionID = &s
	}
	return resp
}
