// Package search implements ranked full-text search over a user's questions.
package search

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/adapter/postgres/searchindex"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type indexRepo interface {
	Search(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error)
	Rebuild(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the search business logic.
type Service struct {
	index indexRepo
	tx    txManager
	log   *slog.Logger
}

// NewService creates a new Search service.
func NewService(log *slog.Logger, index indexRepo, tx txManager) *Service {
	return &Service{
		index: index,
		tx:    tx,
		log:   log.With("service", "search"),
	}
}
