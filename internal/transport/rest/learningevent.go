package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/learningevent"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

type learningEventService interface {
	Create(ctx context.Context, input learningevent.CreateInput) (*domain.LearningEvent, error)
	Get(ctx context.Context, userID string, eventID uuid.UUID) (*domain.LearningEvent, error)
	List(ctx context.Context, input learningevent.ListInput) ([]*domain.LearningEvent, int, error)
}

// LearningEventHandler serves learning event REST endpoints. Events carry a
// loosely typed external user id: the body/query value wins, otherwise the
// authenticated user's id is used.
type LearningEventHandler struct {
	svc learningEventService
	log *slog.Logger
}

// NewLearningEventHandler creates a LearningEventHandler.
func NewLearningEventHandler(svc learningEventService, logger *slog.Logger) *LearningEventHandler {
	return &LearningEventHandler{svc: svc, log: logger.With("handler", "learningevent")}
}

type learningEventRequest struct {
	UserID     string     `json:"user_id"`
	AppID      string     `json:"app_id"`
	Action     string     `json:"action"`
	ObjectID   *string    `json:"object_id"`
	Score      *float64   `json:"score"`
	DurationMs *int       `json:"duration_ms"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type learningEventResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AppID      string    `json:"app_id"`
	Action     string    `json:"action"`
	ObjectID   *string   `json:"object_id,omitempty"`
	Score      *float64  `json:"score,omitempty"`
	DurationMs *int      `json:"duration_ms,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type learningEventListResponse struct {
	Items      []learningEventResponse `json:"items"`
	TotalCount int                     `json:"total_count"`
}

// resolveUserID picks the explicit external id when given, falling back to
// the authenticated user.
func resolveUserID(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		return id.String()
	}
	return ""
}

// Create handles POST /api/v1/learning-events.
func (h *LearningEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req learningEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := learningevent.CreateInput{
		UserID:     resolveUserID(r.Context(), req.UserID),
		AppID:      req.AppID,
		Action:     req.Action,
		ObjectID:   req.ObjectID,
		Score:      req.Score,
		DurationMs: req.DurationMs,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}

	ev, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLearningEventResponse(ev))
}

// Get handles GET /api/v1/learning-events/{id}.
func (h *LearningEventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	userID := resolveUserID(r.Context(), r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ev, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLearningEventResponse(ev))
}

// List handles GET /api/v1/learning-events. Supports user_id, action,
// limit, and offset query parameters.
func (h *LearningEventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}

	userID := resolveUserID(r.Context(), r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	events, total, err := h.svc.List(r.Context(), learningevent.ListInput{
		UserID: userID,
		Action: queryString(r, "action"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]learningEventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toLearningEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, learningEventListResponse{Items: items, TotalCount: total})
}

func toLearningEventResponse(ev *domain.LearningEvent) learningEventResponse {
	return learningEventResponse{
		ID:         ev.ID.String(),
		UserID:     ev.UserID,
		AppID:      ev.AppID,
		Action:     ev.Action,
		ObjectID:   ev.ObjectID,
		Score:      ev.Score,
		DurationMs: ev.DurationMs,
		OccurredAt: ev.OccurredAt,
	}
}
