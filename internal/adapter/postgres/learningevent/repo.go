// Package learningevent implements the LearningEvent repository using
// PostgreSQL. Events are append-only and keyed on an external user identifier
// that is not required to resolve to a users row.
package learningevent

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

// Repo provides learning event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new learning event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO learning_events (id, user_id, app_id, action, object_id, score, duration_ms, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, app_id, action, object_id, score, duration_ms, occurred_at`

const getByIDSQL = `
SELECT id, user_id, app_id, action, object_id, score, duration_ms, occurred_at
FROM learning_events
WHERE id = $1 AND user_id = $2`

const listByUserSQL = `
SELECT id, user_id, app_id, action, object_id, score, duration_ms, occurred_at
FROM learning_events
WHERE user_id = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2 OFFSET $3`

const listByActionSQL = `
SELECT id, user_id, app_id, action, object_id, score, duration_ms, occurred_at
FROM learning_events
WHERE user_id = $1 AND action = $2
ORDER BY occurred_at DESC, id DESC
LIMIT $3 OFFSET $4`

const countByUserSQL = `SELECT count(*) FROM learning_events WHERE user_id = $1`

// Create appends a new learning event. OccurredAt defaults to now when the
// caller leaves it zero.
func (r *Repo) Create(ctx context.Context, ev *domain.LearningEvent) (*domain.LearningEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	occurredAt := ev.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	created, err := scanEvent(querier.QueryRow(ctx, insertSQL,
		id, ev.UserID, ev.AppID, ev.Action, ev.ObjectID, ev.Score, ev.DurationMs, occurredAt))
	if err != nil {
		return nil, postgres.MapError(err, "learning event", id)
	}
	return created, nil
}

// GetByID returns one event scoped to the external user identifier.
func (r *Repo) GetByID(ctx context.Context, userID string, eventID uuid.UUID) (*domain.LearningEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	ev, err := scanEvent(querier.QueryRow(ctx, getByIDSQL, eventID, userID))
	if err != nil {
		return nil, postgres.MapError(err, "learning event", eventID)
	}
	return ev, nil
}

// ListByUser returns the user's events, most recent first.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.LearningEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByUserSQL, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list learning events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("list learning events: %w", err)
	}
	return events, nil
}

// ListByAction returns the user's events filtered on one action.
func (r *Repo) ListByAction(ctx context.Context, userID, action string, limit, offset int) ([]*domain.LearningEvent, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listByActionSQL, userID, action, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list learning events by action: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, fmt.Errorf("list learning events by action: %w", err)
	}
	return events, nil
}

// CountByUser returns the user's event total for pagination.
func (r *Repo) CountByUser(ctx context.Context, userID string) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count learning events: %w", err)
	}
	return count, nil
}

func scanEvents(rows pgx.Rows) ([]*domain.LearningEvent, error) {
	var events []*domain.LearningEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if events == nil {
		events = []*domain.LearningEvent{}
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.LearningEvent, error) {
	var ev domain.LearningEvent
	if err := row.Scan(&ev.ID, &ev.UserID, &ev.AppID, &ev.Action,
		&ev.ObjectID, &ev.Score, &ev.DurationMs, &ev.OccurredAt); err != nil {
		return nil, err
	}
	return &ev, nil
}
