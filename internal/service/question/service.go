// Package question implements the question business logic. Every mutation
// writes the question row and its search index entry in one transaction, so
// the index never drifts from the table it mirrors.
package question

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	pgquestion "github.com/typedrill/typedrill-backend/internal/adapter/postgres/question"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type questionRepo interface {
	Create(ctx context.Context, q *domain.Question) (*domain.Question, error)
	GetByID(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error)
	ListByStudyBook(ctx context.Context, userID, bookID uuid.UUID, filter pgquestion.Filter) ([]*domain.Question, error)
	GetRandom(ctx context.Context, userID, bookID uuid.UUID) (*domain.Question, error)
	Update(ctx context.Context, userID uuid.UUID, q *domain.Question) (*domain.Question, error)
	Delete(ctx context.Context, userID, questionID uuid.UUID) error
	CountByStudyBook(ctx context.Context, userID, bookID uuid.UUID, filter pgquestion.Filter) (int, error)
}

type studyBookRepo interface {
	GetByID(ctx context.Context, userID, bookID uuid.UUID) (*domain.StudyBook, error)
}

type searchIndex interface {
	Upsert(ctx context.Context, questionID uuid.UUID, question, answer string) error
	Delete(ctx context.Context, questionID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the question business logic.
type Service struct {
	questions questionRepo
	books     studyBookRepo
	index     searchIndex
	tx        txManager
	log       *slog.Logger
}

// NewService creates a new Question service.
func NewService(
	log *slog.Logger,
	questions questionRepo,
	books studyBookRepo,
	index searchIndex,
	tx txManager,
) *Service {
	return &Service{
		questions: questions,
		books:     books,
		index:     index,
		tx:        tx,
		log:       log.With("service", "question"),
	}
}
