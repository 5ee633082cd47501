// Package studybook implements the study book business logic.
package studybook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

// Field and paging limits.
const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	defaultLimit      = 50
	maxLimit          = 200
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type bookRepo interface {
	Create(ctx context.Context, userID uuid.UUID, title string, description *string) (*domain.StudyBook, error)
	GetByID(ctx context.Context, userID, bookID uuid.UUID) (*domain.StudyBook, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudyBook, error)
	Update(ctx context.Context, userID, bookID uuid.UUID, title string, description *string) (*domain.StudyBook, error)
	Delete(ctx context.Context, userID, bookID uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type searchIndex interface {
	DeleteByStudyBook(ctx context.Context, bookID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the study book business logic.
type Service struct {
	books bookRepo
	index searchIndex
	tx    txManager
	log   *slog.Logger
}

// NewService creates a new StudyBook service.
func NewService(log *slog.Logger, books bookRepo, index searchIndex, tx txManager) *Service {
	return &Service{
		books: books,
		index: index,
		tx:    tx,
		log:   log.With("service", "studybook"),
	}
}

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// CreateInput holds the parameters for creating a study book.
type CreateInput struct {
	Title       string
	Description *string
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	return validateContent(i.Title, i.Description)
}

// UpdateInput holds the parameters for updating a study book.
type UpdateInput struct {
	StudyBookID uuid.UUID
	Title       string
	Description *string
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	if i.StudyBookID == uuid.Nil {
		return domain.NewValidationError("study_book_id", "required")
	}
	return validateContent(i.Title, i.Description)
}

// ListInput holds the paging parameters for listing study books.
type ListInput struct {
	Limit  int
	Offset int
}

// Validate checks all fields and collects all errors.
func (i *ListInput) Validate() error {
	var errs []domain.FieldError

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

func validateContent(title string, description *string) error {
	var errs []domain.FieldError

	if strings.TrimSpace(title) == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	} else if len(title) > maxTitleLen {
		errs = append(errs, domain.FieldError{Field: "title", Message: "too long"})
	}
	if description != nil && len(*description) > maxDescriptionLen {
		errs = append(errs, domain.FieldError{Field: "description", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Create creates a study book owned by the caller.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.StudyBook, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	book, err := s.books.Create(ctx, userID, input.Title, input.Description)
	if err != nil {
		return nil, fmt.Errorf("create study book: %w", err)
	}

	s.log.InfoContext(ctx, "study book created",
		slog.String("user_id", userID.String()),
		slog.String("study_book_id", book.ID.String()),
	)

	return book, nil
}

// Get returns one study book owned by the caller.
func (s *Service) Get(ctx context.Context, bookID uuid.UUID) (*domain.StudyBook, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if bookID == uuid.Nil {
		return nil, domain.NewValidationError("study_book_id", "required")
	}

	book, err := s.books.GetByID(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("get study book: %w", err)
	}
	return book, nil
}

// List returns a page of the caller's study books plus the total.
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.StudyBook, int, error) {
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

	books, err := s.books.ListByUser(ctx, userID, limit, input.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list study books: %w", err)
	}

	total, err := s.books.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count study books: %w", err)
	}

	return books, total, nil
}

// Update rewrites title and description. Last writer wins.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.StudyBook, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	book, err := s.books.Update(ctx, userID, input.StudyBookID, input.Title, input.Description)
	if err != nil {
		return nil, fmt.Errorf("update study book: %w", err)
	}

	s.log.InfoContext(ctx, "study book updated",
		slog.String("user_id", userID.String()),
		slog.String("study_book_id", book.ID.String()),
	)

	return book, nil
}

// Delete removes a study book, its questions (FK cascade), and their index
// entries in one transaction.
func (s *Service) Delete(ctx context.Context, bookID uuid.UUID) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if bookID == uuid.Nil {
		return domain.NewValidationError("study_book_id", "required")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// Index rows first: once the book row is gone the join that finds
		// them has nothing to stand on.
		if indexErr := s.index.DeleteByStudyBook(txCtx, bookID); indexErr != nil {
			return fmt.Errorf("unindex study book: %w", indexErr)
		}
		if deleteErr := s.books.Delete(txCtx, userID, bookID); deleteErr != nil {
			return fmt.Errorf("delete study book: %w", deleteErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "study book deleted",
		slog.String("user_id", userID.String()),
		slog.String("study_book_id", bookID.String()),
	)

	return nil
}
