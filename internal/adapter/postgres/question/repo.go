// Package question implements the Question repository using PostgreSQL.
//
// Questions are owned indirectly: the row carries no user_id, so every
// non-create operation joins through study_books and filters on the book
// owner. Filtering on anything stored on the question row alone would be
// spoofable and is never done here.
package question

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/typedrill/typedrill-backend/internal/adapter/postgres"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Repo provides question persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new question repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const insertSQL = `
INSERT INTO questions (id, study_book_id, language, category, difficulty, question, answer, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
RETURNING id, study_book_id, language, category, difficulty, question, answer, created_at, updated_at`

const getByIDSQL = `
SELECT q.id, q.study_book_id, q.language, q.category, q.difficulty, q.question, q.answer, q.created_at, q.updated_at
FROM questions q
JOIN study_books sb ON sb.id = q.study_book_id
WHERE q.id = $1 AND sb.user_id = $2`

const getRandomSQL = `
SELECT q.id, q.study_book_id, q.language, q.category, q.difficulty, q.question, q.answer, q.created_at, q.updated_at
FROM questions q
JOIN study_books sb ON sb.id = q.study_book_id
WHERE q.study_book_id = $1 AND sb.user_id = $2
ORDER BY random()
LIMIT 1`

const updateSQL = `
UPDATE questions q
SET language = $3, category = $4, difficulty = $5, question = $6, answer = $7, updated_at = $8
FROM study_books sb
WHERE q.id = $1 AND sb.id = q.study_book_id AND sb.user_id = $2
RETURNING q.id, q.study_book_id, q.language, q.category, q.difficulty, q.question, q.answer, q.created_at, q.updated_at`

const deleteSQL = `
DELETE FROM questions q
USING study_books sb
WHERE q.id = $1 AND sb.id = q.study_book_id AND sb.user_id = $2`

// Create inserts a new question. Ownership of the study book is verified by
// the caller before the insert; the FK rejects unknown books.
func (r *Repo) Create(ctx context.Context, q *domain.Question) (*domain.Question, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := scanQuestion(querier.QueryRow(ctx, insertSQL,
		id, q.StudyBookID, q.Language, q.Category, q.Difficulty.String(), q.Question, q.Answer, now))
	if err != nil {
		return nil, postgres.MapError(err, "question", id)
	}
	return created, nil
}

// GetByID returns a question by primary key, scoped to the requesting user
// through the study book join.
func (r *Repo) GetByID(ctx context.Context, userID, questionID uuid.UUID) (*domain.Question, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	q, err := scanQuestion(querier.QueryRow(ctx, getByIDSQL, questionID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "question", questionID)
	}
	return q, nil
}

// ListByStudyBook returns questions of one study book, newest first with an
// id tie-break, applying the optional filter fields.
func (r *Repo) ListByStudyBook(ctx context.Context, userID, bookID uuid.UUID, filter Filter) ([]*domain.Question, error) {
	filter.normalize()

	builder := applyFilter(psql.
		Select("q.id", "q.study_book_id", "q.language", "q.category", "q.difficulty",
			"q.question", "q.answer", "q.created_at", "q.updated_at").
		From("questions q").
		Join("study_books sb ON sb.id = q.study_book_id").
		Where(sq.Eq{"q.study_book_id": bookID, "sb.user_id": userID}), filter).
		OrderBy("q.created_at DESC", "q.id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build question list query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// GetRandom returns a uniformly random question from a study book, scoped to
// the requesting user.
func (r *Repo) GetRandom(ctx context.Context, userID, bookID uuid.UUID) (*domain.Question, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	q, err := scanQuestion(querier.QueryRow(ctx, getRandomSQL, bookID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "question", uuid.Nil)
	}
	return q, nil
}

// Update rewrites the mutable fields. Last writer wins. A question reachable
// only through another user's study book reports domain.ErrNotFound.
func (r *Repo) Update(ctx context.Context, userID uuid.UUID, q *domain.Question) (*domain.Question, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	updated, err := scanQuestion(querier.QueryRow(ctx, updateSQL,
		q.ID, userID, q.Language, q.Category, q.Difficulty.String(), q.Question, q.Answer, now))
	if err != nil {
		return nil, postgres.MapError(err, "question", q.ID)
	}
	return updated, nil
}

// Delete removes a question. Returns domain.ErrNotFound if the row is absent
// or foreign-owned, which also makes a delete racing another delete a no-op
// rather than an error.
func (r *Repo) Delete(ctx context.Context, userID, questionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, questionID, userID)
	if err != nil {
		return postgres.MapError(err, "question", questionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}
	return nil
}

// CountByStudyBook returns the question total of one study book under the
// same filter predicates ListByStudyBook pages through, so a paginated total
// always agrees with the result set.
func (r *Repo) CountByStudyBook(ctx context.Context, userID, bookID uuid.UUID, filter Filter) (int, error) {
	builder := applyFilter(psql.
		Select("count(*)").
		From("questions q").
		Join("study_books sb ON sb.id = q.study_book_id").
		Where(sq.Eq{"q.study_book_id": bookID, "sb.user_id": userID}), filter)

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build question count query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// applyFilter adds the optional filter predicates shared by the list and
// count queries. Limit and Offset are pagination, not predicates, and stay
// out of the count.
func applyFilter(builder sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.Language != nil {
		builder = builder.Where(sq.Eq{"q.language": *filter.Language})
	}
	if filter.Category != nil {
		builder = builder.Where(sq.Eq{"q.category": *filter.Category})
	}
	if filter.Difficulty != nil {
		builder = builder.Where(sq.Eq{"q.difficulty": filter.Difficulty.String()})
	}
	return builder
}

func scanQuestions(rows pgx.Rows) ([]*domain.Question, error) {
	var questions []*domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if questions == nil {
		questions = []*domain.Question{}
	}
	return questions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*domain.Question, error) {
	var (
		q          domain.Question
		difficulty string
	)
	if err := row.Scan(&q.ID, &q.StudyBookID, &q.Language, &q.Category, &difficulty,
		&q.Question, &q.Answer, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	q.Difficulty = domain.Difficulty(difficulty)
	return &q, nil
}
