package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedrill/typedrill-backend/internal/adapter/postgres/searchindex"
	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockIndexRepo struct {
	SearchFunc  func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error)
	RebuildFunc func(ctx context.Context) (int, error)
	CountFunc   func(ctx context.Context) (int, error)

	searchCalls  int
	rebuildCalls int
}

func (m *mockIndexRepo) Search(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
	m.searchCalls++
	return m.SearchFunc(ctx, userID, tsQuery, limit)
}

func (m *mockIndexRepo) Rebuild(ctx context.Context) (int, error) {
	m.rebuildCalls++
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx)
	}
	return 0, nil
}

func (m *mockIndexRepo) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(index *mockIndexRepo) *Service {
	return NewService(slog.Default(), index, &mockTxManager{})
}

func authedCtx() context.Context {
	return ctxutil.WithUserID(context.Background(), uuid.New())
}

// ---------------------------------------------------------------------------
// BuildTSQuery
// ---------------------------------------------------------------------------

func TestBuildTSQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single token", "goroutine", "'goroutine'"},
		{"two tokens become OR", "go routine", "'go' | 'routine'"},
		{"extra whitespace collapses", "  go \t routine  ", "'go' | 'routine'"},
		{"quote is doubled", "don't panic", "'don''t' | 'panic'"},
		{"trailing backslash is doubled", `foo\`, `'foo\\'`},
		{"interior backslash is doubled", `C:\Users`, `'C:\\Users'`},
		{"backslash before quote", `it\'s`, `'it\\''s'`},
		{"operators are quoted literals", "a & b | c", "'a' | '&' | 'b' | '|' | 'c'"},
		{"empty query", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuildTSQuery(tt.query))
		})
	}
}

// ---------------------------------------------------------------------------
// Score normalization
// ---------------------------------------------------------------------------

func TestNormalizeScore(t *testing.T) {
	t.Parallel()

	// Bounded in (0, 1) for any positive rank.
	for _, rank := range []float64{0.001, 0.1, 1, 10, 1000} {
		score := normalizeScore(rank)
		assert.Greater(t, score, 0.0, "rank %f", rank)
		assert.Less(t, score, 1.0, "rank %f", rank)
	}

	// Strictly monotonic: a better rank yields a better score.
	assert.Greater(t, normalizeScore(2.0), normalizeScore(1.0))
	assert.Greater(t, normalizeScore(0.2), normalizeScore(0.1))

	// Sign of the raw statistic does not matter.
	assert.Equal(t, normalizeScore(1.5), normalizeScore(-1.5))
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestService_Search_MapsMatches(t *testing.T) {
	t.Parallel()
	qID := uuid.New()

	index := &mockIndexRepo{
		SearchFunc: func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
			assert.Equal(t, "'defer'", tsQuery)
			assert.Equal(t, 50, limit) // default
			return []searchindex.Match{{
				QuestionID: qID,
				Question:   "what does defer do",
				Answer:     "runs at exit",
				Highlight:  "what does <mark>defer</mark> do",
				Rank:       0.4,
			}}, nil
		},
	}
	svc := newTestService(index)

	resp, err := svc.Search(authedCtx(), SearchInput{Query: " defer "})
	require.NoError(t, err)
	assert.Equal(t, "defer", resp.Query)
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, qID, r.QuestionID)
	assert.Equal(t, "what does <mark>defer</mark> do", r.Highlight)
	assert.InDelta(t, 0.4/1.4, r.Score, 1e-9)
}

func TestService_Search_EmptyResultIsSuccess(t *testing.T) {
	t.Parallel()
	index := &mockIndexRepo{
		SearchFunc: func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
			return []searchindex.Match{}, nil
		},
	}
	svc := newTestService(index)

	resp, err := svc.Search(authedCtx(), SearchInput{Query: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalCount)
}

func TestService_Search_HighlightFallback(t *testing.T) {
	t.Parallel()
	index := &mockIndexRepo{
		SearchFunc: func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
			return []searchindex.Match{{
				QuestionID: uuid.New(),
				Question:   "long question",
				Answer:     "long answer",
				Highlight:  "a snippet without markers",
				Rank:       0.1,
			}}, nil
		},
	}
	svc := newTestService(index)

	resp, err := svc.Search(authedCtx(), SearchInput{Query: "anything"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "long question long answer", resp.Results[0].Highlight)
}

func TestService_Search_RebuildsOnceOnUnavailableIndex(t *testing.T) {
	t.Parallel()
	index := &mockIndexRepo{}
	index.SearchFunc = func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
		if index.searchCalls == 1 {
			return nil, domain.ErrSearchUnavailable
		}
		return []searchindex.Match{{QuestionID: uuid.New(), Rank: 0.2, Highlight: "<mark>x</mark>"}}, nil
	}
	svc := newTestService(index)

	resp, err := svc.Search(authedCtx(), SearchInput{Query: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, 1, index.rebuildCalls)
	assert.Equal(t, 2, index.searchCalls)
}

func TestService_Search_SecondFailureSurfaces(t *testing.T) {
	t.Parallel()
	index := &mockIndexRepo{
		SearchFunc: func(ctx context.Context, userID uuid.UUID, tsQuery string, limit int) ([]searchindex.Match, error) {
			return nil, domain.ErrSearchUnavailable
		},
	}
	svc := newTestService(index)

	_, err := svc.Search(authedCtx(), SearchInput{Query: "x"})
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.Equal(t, 1, index.rebuildCalls)
	assert.Equal(t, 2, index.searchCalls)
}

func TestService_Search_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockIndexRepo{})

	_, err := svc.Search(authedCtx(), SearchInput{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	long := make([]byte, maxQueryLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Search(authedCtx(), SearchInput{Query: string(long)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Search(authedCtx(), SearchInput{Query: "ok", Limit: maxLimit + 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Search_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc := newTestService(&mockIndexRepo{})

	_, err := svc.Search(context.Background(), SearchInput{Query: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ---------------------------------------------------------------------------
// RebuildIndex
// ---------------------------------------------------------------------------

func TestService_RebuildIndex(t *testing.T) {
	t.Parallel()
	index := &mockIndexRepo{
		RebuildFunc: func(ctx context.Context) (int, error) {
			return 42, nil
		},
	}
	svc := newTestService(index)

	n, err := svc.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
