// Package learningevent implements the activity event business logic.
// Events come from external learning apps and are keyed on an external user
// identifier carried in the request, not on a users row.
package learningevent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Field and paging limits.
const (
	maxIDLen     = 255
	maxActionLen = 100
	defaultLimit = 50
	maxLimit     = 200
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type eventRepo interface {
	Create(ctx context.Context, ev *domain.LearningEvent) (*domain.LearningEvent, error)
	GetByID(ctx context.Context, userID string, eventID uuid.UUID) (*domain.LearningEvent, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LearningEvent, error)
	ListByAction(ctx context.Context, userID, action string, limit, offset int) ([]*domain.LearningEvent, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the learning event business logic.
type Service struct {
	events eventRepo
	log    *slog.Logger
}

// NewService creates a new LearningEvent service.
func NewService(log *slog.Logger, events eventRepo) *Service {
	return &Service{
		events: events,
		log:    log.With("service", "learningevent"),
	}
}

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// CreateInput holds the parameters for recording a learning event.
type CreateInput struct {
	UserID     string
	AppID      string
	Action     string
	ObjectID   *string
	Score      *float64
	DurationMs *int
	OccurredAt time.Time
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	} else if len(i.UserID) > maxIDLen {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "too long"})
	}
	if strings.TrimSpace(i.AppID) == "" {
		errs = append(errs, domain.FieldError{Field: "app_id", Message: "required"})
	} else if len(i.AppID) > maxIDLen {
		errs = append(errs, domain.FieldError{Field: "app_id", Message: "too long"})
	}
	if strings.TrimSpace(i.Action) == "" {
		errs = append(errs, domain.FieldError{Field: "action", Message: "required"})
	} else if len(i.Action) > maxActionLen {
		errs = append(errs, domain.FieldError{Field: "action", Message: "too long"})
	}
	if i.Score != nil && (*i.Score < 0 || *i.Score > 1) {
		errs = append(errs, domain.FieldError{Field: "score", Message: "must be between 0 and 1"})
	}
	if i.DurationMs != nil && *i.DurationMs < 0 {
		errs = append(errs, domain.FieldError{Field: "duration_ms", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListInput holds the paging parameters for listing learning events.
type ListInput struct {
	UserID string
	Action *string
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *ListInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.UserID) == "" {
		errs = append(errs, domain.FieldError{Field: "user_id", Message: "required"})
	}
	if i.Action != nil && strings.TrimSpace(*i.Action) == "" {
		errs = append(errs, domain.FieldError{Field: "action", Message: "must be non-empty when present"})
	}
	if i.Limit < 0 || i.Limit > maxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create records one learning event.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.LearningEvent, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.events.Create(ctx, &domain.LearningEvent{
		UserID:     strings.TrimSpace(input.UserID),
		AppID:      strings.TrimSpace(input.AppID),
		Action:     strings.TrimSpace(input.Action),
		ObjectID:   input.ObjectID,
		Score:      input.Score,
		DurationMs: input.DurationMs,
		OccurredAt: input.OccurredAt,
	})
	if err != nil {
		return nil, fmt.Errorf("create learning event: %w", err)
	}

	s.log.InfoContext(ctx, "learning event recorded",
		slog.String("user_id", created.UserID),
		slog.String("app_id", created.AppID),
		slog.String("action", created.Action),
	)

	return created, nil
}

// Get returns one event scoped to the external user identifier.
func (s *Service) Get(ctx context.Context, userID string, eventID uuid.UUID) (*domain.LearningEvent, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.NewValidationError("user_id", "required")
	}
	if eventID == uuid.Nil {
		return nil, domain.NewValidationError("event_id", "required")
	}

	ev, err := s.events.GetByID(ctx, strings.TrimSpace(userID), eventID)
	if err != nil {
		return nil, fmt.Errorf("get learning event: %w", err)
	}
	return ev, nil
}

// List returns a page of one user's events plus the total, optionally
// narrowed to a single action.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.LearningEvent, int, error) {
	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	userID := strings.TrimSpace(input.UserID)
	limit := input.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	var (
		events []*domain.LearningEvent
		err    error
	)
	if input.Action != nil {
		events, err = s.events.ListByAction(ctx, userID, strings.TrimSpace(*input.Action), limit, input.Offset)
	} else {
		events, err = s.events.ListByUser(ctx, userID, limit, input.Offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list learning events: %w", err)
	}

	total, err := s.events.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count learning events: %w", err)
	}

	return events, total, nil
}
