package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/typedrill/typedrill-backend/internal/adapter/postgres/searchindex"
	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

// Query and paging bounds.
const (
	maxQueryLen  = 500
	defaultLimit = 50
	maxLimit     = 100
)

// SearchInput holds the parameters for a search request.
type SearchInput struct {
	Query string
	Limit int
}

// Validate checks all fields and collects all errors.
func (i *SearchInput) Validate() error {
	var errs []domain.FieldError

	trimmed := strings.TrimSpace(i.Query)
	if trimmed == "" {
		errs = append(errs, domain.FieldError{Field: "q", Message: "required"})
	} else if len(trimmed) > maxQueryLen {
		errs = append(errs, domain.FieldError{Field: "q", Message: "max 500 characters"})
	}
	if i.Limit < 0 || i.Limit > maxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Search runs a ranked OR-semantics query over the caller's questions.
// If the index read fails, the service rebuilds the index once and retries;
// a second failure surfaces as domain.ErrSearchUnavailable.
func (s *Service) Search(ctx context.Context, input SearchInput) (*domain.SearchResponse, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	query := strings.TrimSpace(input.Query)
	limit := input.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	tsQuery := BuildTSQuery(query)

	matches, err := s.index.Search(ctx, userID, tsQuery, limit)
	if err != nil && errors.Is(err, domain.ErrSearchUnavailable) {
		s.log.WarnContext(ctx, "search index unavailable, rebuilding",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		if _, rebuildErr := s.RebuildIndex(ctx); rebuildErr != nil {
			return nil, fmt.Errorf("rebuild after failure: %w: %w", rebuildErr, domain.ErrSearchUnavailable)
		}
		matches, err = s.index.Search(ctx, userID, tsQuery, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, domain.SearchResult{
			QuestionID: m.QuestionID,
			Question:   m.Question,
			Answer:     m.Answer,
			Highlight:  highlight(m),
			Score:      normalizeScore(m.Rank),
		})
	}

	return &domain.SearchResponse{
		Query:      query,
		Results:    results,
		TotalCount: len(results),
	}, nil
}

// RebuildIndex atomically reconstructs the whole index from the question
// table and returns the number of indexed questions. Safe to call at any
// time: readers see the old index until the rebuild commits.
func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	var indexed int
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var rebuildErr error
		indexed, rebuildErr = s.index.Rebuild(txCtx)
		return rebuildErr
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.log.InfoContext(ctx, "search index rebuilt", slog.Int("indexed", indexed))
	return indexed, nil
}

// IndexSize returns the current number of index entries.
func (s *Service) IndexSize(ctx context.Context) (int, error) {
	count, err := s.index.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("index size: %w", err)
	}
	return count, nil
}

// normalizeScore maps the unbounded ts_rank_cd statistic into (0, 1], larger
// is better. The rank is inverted into a distance first so the familiar
// 1/(1+d) shape applies; the composition simplifies to rank/(1+rank) and
// stays strictly monotonic in the raw rank.
func normalizeScore(rank float64) float64 {
	if rank < 0 {
		rank = -rank
	}
	return rank / (1 + rank)
}

// highlight returns the snippet when it carries at least one marked term,
// otherwise the full indexed text. ts_headline can come back markless when
// the match sits outside the snippet window.
func highlight(m searchindex.Match) string {
	if strings.Contains(m.Highlight, "<mark>") {
		return m.Highlight
	}
	return m.Question + " " + m.Answer
}
