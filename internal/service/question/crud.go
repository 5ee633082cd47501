package question

import (
	"context"
	"fmt"
	"log/slog"

	pgquestion "github.com/typedrill/typedrill-backend/internal/adapter/postgres/question"
	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

// Create creates a question and indexes it in the same transaction.
func (s *Service) Create(ctx context.Context, input CreateQuestionInput) (*domain.Question, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	// Resolve book ownership before writing anything. A foreign book is a
	// plain not-found.
	if _, err := s.books.GetByID(ctx, userID, input.StudyBookID); err != nil {
		return nil, fmt.Errorf("get study book: %w", err)
	}

	var created *domain.Question

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var createErr error
		created, createErr = s.questions.Create(txCtx, &domain.Question{
			StudyBookID: input.StudyBookID,
			Language:    input.Language,
			Category:    input.Category,
			Difficulty:  input.Difficulty,
			Question:    input.Question,
			Answer:      input.Answer,
		})
		if createErr != nil {
			return fmt.Errorf("create question: %w", createErr)
		}

		if indexErr := s.index.Upsert(txCtx, created.ID, created.Question, created.Answer); indexErr != nil {
			return fmt.Errorf("index question: %w", indexErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "question created",
		slog.String("user_id", userID.String()),
		slog.String("question_id", created.ID.String()),
		slog.String("study_book_id", input.StudyBookID.String()),
	)

	return created, nil
}

// Get returns one question owned by the caller.
func (s *Service) Get(ctx context.Context, input GetQuestionInput) (*domain.Question, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	q, err := s.questions.GetByID(ctx, userID, input.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// List returns a page of questions from one study book plus the total number
// of questions matching the same filter, for pagination.
func (s *Service) List(ctx context.Context, input ListQuestionsInput) ([]*domain.Question, int, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, 0, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, 0, err
	}

	// Distinguish an empty book from a foreign or missing one.
	if _, err := s.books.GetByID(ctx, userID, input.StudyBookID); err != nil {
		return nil, 0, fmt.Errorf("get study book: %w", err)
	}

	filter := pgquestion.Filter{
		Language:   input.Language,
		Category:   input.Category,
		Difficulty: input.Difficulty,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}

	questions, err := s.questions.ListByStudyBook(ctx, userID, input.StudyBookID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}

	// Total under the same predicates as the page, so pagination math holds
	// when a filter is active.
	total, err := s.questions.CountByStudyBook(ctx, userID, input.StudyBookID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	return questions, total, nil
}

// GetRandom draws one random question from a study book. An empty book is a
// not-found, same as a foreign one.
func (s *Service) GetRandom(ctx context.Context, input RandomQuestionInput) (*domain.Question, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	q, err := s.questions.GetRandom(ctx, userID, input.StudyBookID)
	if err != nil {
		return nil, fmt.Errorf("get random question: %w", err)
	}
	return q, nil
}

// Update rewrites a question and refreshes its index entry in the same
// transaction. Last writer wins.
func (s *Service) Update(ctx context.Context, input UpdateQuestionInput) (*domain.Question, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Question

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var updateErr error
		updated, updateErr = s.questions.Update(txCtx, userID, &domain.Question{
			ID:         input.QuestionID,
			Language:   input.Language,
			Category:   input.Category,
			Difficulty: input.Difficulty,
			Question:   input.Question,
			Answer:     input.Answer,
		})
		if updateErr != nil {
			return fmt.Errorf("update question: %w", updateErr)
		}

		if indexErr := s.index.Upsert(txCtx, updated.ID, updated.Question, updated.Answer); indexErr != nil {
			return fmt.Errorf("reindex question: %w", indexErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "question updated",
		slog.String("user_id", userID.String()),
		slog.String("question_id", updated.ID.String()),
	)

	return updated, nil
}

// Delete removes a question and its index entry in the same transaction.
func (s *Service) Delete(ctx context.Context, input DeleteQuestionInput) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// Index row first: after the question row is gone the ownership
		// join cannot resolve it anymore.
		if indexErr := s.index.Delete(txCtx, input.QuestionID); indexErr != nil {
			return fmt.Errorf("unindex question: %w", indexErr)
		}
		if deleteErr := s.questions.Delete(txCtx, userID, input.QuestionID); deleteErr != nil {
			return fmt.Errorf("delete question: %w", deleteErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "question deleted",
		slog.String("user_id", userID.String()),
		slog.String("question_id", input.QuestionID.String()),
	)

	return nil
}
