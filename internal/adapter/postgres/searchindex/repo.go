// Package searchindex implements the full-text index over questions.
//
// Index rows live in search_entries and are written by the question service
// in the same transaction as the question row itself, so a committed question
// is always searchable and a rolled-back one never is. There are no triggers;
// the cascade FK on question_id is a backstop, not the consistency mechanism.
package searchindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/typedrill/typedrill-backend/internal/adapter/postgres"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Match is one raw index hit. Rank is the unnormalized ts_rank_cd statistic;
// the search service converts it into the bounded score.
type Match struct {
	QuestionID uuid.UUID
	Question   string
	Answer     string
	Highlight  string
	Rank       float64
}

// Repo provides index persistence backed by PostgreSQL full-text search.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new search index repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `
INSERT INTO search_entries (question_id, question, answer, tsv)
VALUES ($1, $2, $3, to_tsvector('simple', $2 || ' ' || $3))
ON CONFLICT (question_id) DO UPDATE
SET question = EXCLUDED.question,
    answer   = EXCLUDED.answer,
    tsv      = EXCLUDED.tsv`

const deleteSQL = `DELETE FROM search_entries WHERE question_id = $1`

const deleteByBookSQL = `
DELETE FROM search_entries se
USING questions q
WHERE se.question_id = q.id AND q.study_book_id = $1`

const searchSQL = `
SELECT se.question_id,
       se.question,
       se.answer,
       ts_headline('simple', se.question || ' ' || se.answer, query,
                   'StartSel=<mark>, StopSel=</mark>, MaxWords=32, MinWords=8'),
       ts_rank_cd(se.tsv, query)::float8 AS rank
FROM search_entries se
JOIN questions q ON q.id = se.question_id
JOIN study_books sb ON sb.id = q.study_book_id,
     to_tsquery('simple', $2) AS query
WHERE sb.user_id = $1 AND se.tsv @@ query
ORDER BY rank DESC, q.id DESC
LIMIT $3`

const countSQL = `SELECT count(*) FROM search_entries`

const rebuildDeleteSQL = `DELETE FROM search_entries`

const rebuildInsertSQL = `
INSERT INTO search_entries (question_id, question, answer, tsv)
SELECT id, question, answer, to_tsvector('simple', question || ' ' || answer)
FROM questions`

// Upsert writes or refreshes the index row for one question. Must run inside
// the same transaction as the question mutation it reflects.
func (r *Repo) Upsert(ctx context.Context, questionID uuid.UUID, question, answer string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, upsertSQL, questionID, question, answer); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Delete removes the index row for one question. Deleting an unindexed
// question is a no-op.
func (r *Repo) Delete(ctx context.Context, questionID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteSQL, questionID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// DeleteByStudyBook removes the index rows of every question in a study book.
// Used when a whole book is deleted in one transaction.
func (r *Repo) DeleteByStudyBook(ctx context.Context, bookID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, deleteByBookSQL, bookID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// Search runs a ranked match scoped to the given user. tsQuery must already
// be a well-formed to_tsquery expression; the search service builds it.
// Results come back best first with an id tie-break.
func (r *Repo) Search(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]Match, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, searchSQL, userID, tsQuery, limit)
	if err != nil {
		return nil, mapReadError(err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.QuestionID, &m.Question, &m.Answer, &m.Highlight, &m.Rank); err != nil {
			return nil, mapReadError(err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadError(err)
	}

	if matches == nil {
		matches = []Match{}
	}
	return matches, nil
}

// Count returns the total number of index rows.
func (r *Repo) Count(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countSQL).Scan(&count); err != nil {
		return 0, mapReadError(err)
	}
	return count, nil
}

// Rebuild drops every index row and reinserts one per question. Must run
// inside a transaction so readers see either the old index or the new one,
// never an empty table. Idempotent: rebuilding twice yields the same rows.
func (r *Repo) Rebuild(ctx context.Context) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, rebuildDeleteSQL); err != nil {
		return 0, mapWriteError(err)
	}
	tag, err := querier.Exec(ctx, rebuildInsertSQL)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return int(tag.RowsAffected()), nil
}

// mapReadError classifies read-path failures. Anything that is not the
// caller's fault becomes domain.ErrSearchUnavailable, which the service
// answers with one rebuild attempt before giving up.
func mapReadError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("search index: %w", domain.ErrSearchUnavailable)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42601", "42602": // syntax_error, invalid_name: malformed tsquery
			return domain.NewValidationError("q", "malformed query")
		}
	}
	return fmt.Errorf("search index: %v: %w", err, domain.ErrSearchUnavailable)
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("search index write: %w", err)
}
