// Package typinglog implements the typing log business logic. Logs are
// append-only; there is no update or delete path.
package typinglog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

// Paging and measurement bounds.
const (
	defaultLimit = 50
	maxLimit     = 200
	maxTookMs    = 24 * 60 * 60 * 1000 // one day
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type logRepo interface {
	Create(ctx context.Context, log *domain.TypingLog) (*domain.TypingLog, error)
	GetByID(ctx context.Context, userID, logID uuid.UUID) (*domain.TypingLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.TypingLog, error)
	ListByQuestion(ctx context.Context, userID, questionID uuid.UUID, limit, offset int) ([]*domain.TypingLog, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type questionRepo interface {
	GetByID(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the typing log business logic.
type Service struct {
	logs      logRepo
	questions questionRepo
	log       *slog.Logger
}

// NewService creates a new TypingLog service.
func NewService(log *slog.Logger, logs logRepo, questions questionRepo) *Service {
	return &Service{
		logs:      logs,
		questions: questions,
		log:       log.With("service", "typinglog"),
	}
}

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// CreateInput holds the parameters for recording a typing run.
type CreateInput struct {
	QuestionID *uuid.UUID
	WPM        int
	Accuracy   float64
	TookMs     int
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.QuestionID != nil && *i.QuestionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "must be a valid id when present"})
	}
	if i.WPM < 0 || i.WPM > domain.MaxWPM {
		errs = append(errs, domain.FieldError{Field: "wpm", Message: "must be between 0 and 1000"})
	}
	if i.Accuracy < 0 || i.Accuracy > 1 {
		errs = append(errs, domain.FieldError{Field: "accuracy", Message: "must be between 0 and 1"})
	}
	if i.TookMs < 0 || i.TookMs > maxTookMs {
		errs = append(errs, domain.FieldError{Field: "took_ms", Message: "must be between 0 and 86400000"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListInput holds the paging parameters for listing typing logs.
type ListInput struct {
	QuestionID *uuid.UUID
	Limit      int
	Offset     int
}

// Validate checks all fields and collects all errors.
func (i *ListInput) Validate() error {
	var errs []domain.FieldError

	if i.QuestionID != nil && *i.QuestionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "must be a valid id when present"})
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

// Create records a typing run. A referenced question must resolve through
// the caller's ownership chain; a foreign question reads as not found and
// the reference is rejected as invalid.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.TypingLog, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.QuestionID != nil {
		if _, err := s.questions.GetByID(ctx, userID, *input.QuestionID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("question_id", "unknown question")
			}
			return nil, fmt.Errorf("get question: %w", err)
		}
	}

	created, err := s.logs.Create(ctx, &domain.TypingLog{
		UserID:     userID,
		QuestionID: input.QuestionID,
		WPM:        input.WPM,
		Accuracy:   input.Accuracy,
		TookMs:     input.TookMs,
	})
	if err != nil {
		return nil, fmt.Errorf("create typing log: %w", err)
	}

	s.log.InfoContext(ctx, "typing log recorded",
		slog.String("user_id", userID.String()),
		slog.String("typing_log_id", created.ID.String()),
		slog.Int("wpm", created.WPM),
	)

	return created, nil
}

// Get returns one typing log owned by the caller.
func (s *Service) Get(ctx context.Context, logID uuid.UUID) (*domain.TypingLog, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if logID == uuid.Nil {
		return nil, domain.NewValidationError("typing_log_id", "required")
	}

	log, err := s.logs.GetByID(ctx, userID, logID)
	if err != nil {
		return nil, fmt.Errorf("get typing log: %w", err)
	}
	return log, nil
}

// List returns a page of the caller's typing logs plus the total. With a
// question id set, the page narrows to that question's runs.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.TypingLog, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	var (
		logs []*domain.TypingLog
		err  error
	)
	if input.QuestionID != nil {
		logs, err = s.logs.ListByQuestion(ctx, userID, *input.QuestionID, limit, input.Offset)
	} else {
		logs, err = s.logs.ListByUser(ctx, userID, limit, input.Offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list typing logs: %w", err)
	}

	total, err := s.logs.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count typing logs: %w", err)
	}

	return logs, total, nil
}
