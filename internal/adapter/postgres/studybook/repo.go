// Package studybook implements the StudyBook repository using PostgreSQL.
// Study books are directly owned: every non-create operation filters on
// user_id, so a book owned by another user is indistinguishable from a
// missing one.
package studybook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/typedrill/typedrill-backend/internal/adapter/postgres"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Repo provides study book persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new study book repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO study_books (id, user_id, title, description, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING id, user_id, title, description, created_at, updated_at`

const getByIDSQL = `
SELECT id, user_id, title, description, created_at, updated_at
FROM study_books
WHERE id = $1 AND user_id = $2`

const listByUserSQL = `
SELECT id, user_id, title, description, created_at, updated_at
FROM study_books
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

const updateSQL = `
UPDATE study_books
SET title = $3, description = $4, updated_at = $5
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, title, description, created_at, updated_at`

const deleteSQL = `DELETE FROM study_books WHERE id = $1 AND user_id = $2`

const countByUserSQL = `SELECT count(*) FROM study_books WHERE user_id = $1`

// Create inserts a new study book for the given owner.
func (r *Repo) Create(ctx context.Context, userID uuid.UUID, title string, description *string) (*domain.StudyBook, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	sb, err := scanStudyBook(querier.QueryRow(ctx, insertSQL, id, userID, title, description, now))
	if err != nil {
		return nil, postgres.MapError(err, "study book", id)
	}
	return sb, nil
}

// GetByID returns a study book by primary key filtered by owner.
func (r *Repo) GetByID(ctx context.Context, userID, bookID uuid.UUID) (*domain.StudyBook, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	sb, err := scanStudyBook(querier.QueryRow(ctx, getByIDSQL, bookID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "study book", bookID)
	}
	return sb, nil
}

// ListByUser returns the owner's study books, newest first. The id tie-break
// keeps pagination deterministic under concurrent inserts.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.StudyBook, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list study books: %w", err)
	}
	defer rows.Close()

	books, err := scanStudyBooks(rows)
	if err != nil {
		return nil, fmt.Errorf("list study books: %w", err)
	}
	return books, nil
}

// Update rewrites title and description. Last writer wins. A book owned by
// another user reports domain.ErrNotFound.
func (r *Repo) Update(ctx context.Context, userID, bookID uuid.UUID, title string, description *string) (*domain.StudyBook, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	sb, err := scanStudyBook(querier.QueryRow(ctx, updateSQL, bookID, userID, title, description, now))
	if err != nil {
		return nil, postgres.MapError(err, "study book", bookID)
	}
	return sb, nil
}

// Delete removes a study book and, via cascade, its questions.
// Returns domain.ErrNotFound if the book is absent or foreign-owned.
func (r *Repo) Delete(ctx context.Context, userID, bookID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, bookID, userID)
	if err != nil {
		return postgres.MapError(err, "study book", bookID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("study book %s: %w", bookID, domain.ErrNotFound)
	}
	return nil
}

// CountByUser returns the owner's study book total for pagination.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count study books: %w", err)
	}
	return count, nil
}

func scanStudyBooks(rows pgx.Rows) ([]*domain.StudyBook, error) {
	var books []*domain.StudyBook
	for rows.Next() {
		sb, err := scanStudyBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, sb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if books == nil {
		books = []*domain.StudyBook{}
	}
	return books, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudyBook(row rowScanner) (*domain.StudyBook, error) {
	var sb domain.StudyBook
	if err := row.Scan(&sb.ID, &sb.UserID, &sb.Title, &sb.Description, &sb.CreatedAt, &sb.UpdatedAt); err != nil {
		return nil, err
	}
	return &sb, nil
}
