// Package typinglog implements the TypingLog repository using PostgreSQL.
//
// Logs are append-only. The question reference is optional and survives
// question deletion as NULL (ON DELETE SET NULL), so history is never lost
// when its source material goes away.
package typinglog

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

// Repo provides typing log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new typing log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO typing_logs (id, user_id, question_id, wpm, accuracy, took_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, question_id, wpm, accuracy, took_ms, created_at`

const getByIDSQL = `
SELECT id, user_id, question_id, wpm, accuracy, took_ms, created_at
FROM typing_logs
WHERE id = $1 AND user_id = $2`

const listByUserSQL = `
SELECT id, user_id, question_id, wpm, accuracy, took_ms, created_at
FROM typing_logs
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

const listByQuestionSQL = `
SELECT tl.id, tl.user_id, tl.question_id, tl.wpm, tl.accuracy, tl.took_ms, tl.created_at
FROM typing_logs tl
JOIN questions q ON q.id = tl.question_id
JOIN study_books sb ON sb.id = q.study_book_id
WHERE tl.question_id = $1 AND tl.user_id = $2 AND sb.user_id = $2
ORDER BY tl.created_at DESC, tl.id DESC
LIMIT $3 OFFSET $4`

const countByUserSQL = `SELECT count(*) FROM typing_logs WHERE user_id = $1`

// Create appends a new typing log.
func (r *Repo) Create(ctx context.Context, log *domain.TypingLog) (*domain.TypingLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := scanLog(querier.QueryRow(ctx, insertSQL,
		id, log.UserID, log.QuestionID, log.WPM, log.Accuracy, log.TookMs, now))
	if err != nil {
		return nil, postgres.MapError(err, "typing log", id)
	}
	return created, nil
}

// GetByID returns one log, scoped to its owner.
func (r *Repo) GetByID(ctx context.Context, userID, logID uuid.UUID) (*domain.TypingLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	log, err := scanLog(querier.QueryRow(ctx, getByIDSQL, logID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "typing log", logID)
	}
	return log, nil
}

// ListByUser returns the user's logs, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.TypingLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list typing logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanLogs(rows)
	if err != nil {
		return nil, fmt.Errorf("list typing logs: %w", err)
	}
	return logs, nil
}

// ListByQuestion returns the user's logs for one question. The study book
// join keeps a foreign question's history invisible even if a log row were
// somehow mislabeled.
func (r *Repo) ListByQuestion(ctx context.Context, userID, questionID uuid.UUID, limit, offset int) ([]*domain.TypingLog, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByQuestionSQL, questionID, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list typing logs by question: %w", err)
	}
	defer rows.Close()

	logs, err := scanLogs(rows)
	if err != nil {
		return nil, fmt.Errorf("list typing logs by question: %w", err)
	}
	return logs, nil
}

// CountByUser returns the user's log total for pagination.
func (r *Repo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count typing logs: %w", err)
	}
	return count, nil
}

func scanLogs(rows pgx.Rows) ([]*domain.TypingLog, error) {
	var logs []*domain.TypingLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if logs == nil {
		logs = []*domain.TypingLog{}
	}
	return logs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*domain.TypingLog, error) {
	var log domain.TypingLog
	if err := row.Scan(&log.ID, &log.UserID, &log.QuestionID, &log.WPM,
		&log.Accuracy, &log.TookMs, &log.CreatedAt); err != nil {
		return nil, err
	}
	return &log, nil
}
