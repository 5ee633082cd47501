package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/internal/service/search"
)

type searchServiceMock struct {
	SearchFunc  func(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error)
	RebuildFunc func(ctx context.Context) (int, error)
	SizeFunc    func(ctx context.Context) (int, error)
}

func (m *searchServiceMock) Search(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error) {
	return m.SearchFunc(ctx, input)
}

func (m *searchServiceMock) RebuildIndex(ctx context.Context) (int, error) {
	return m.RebuildFunc(ctx)
}

func (m *searchServiceMock) IndexSize(ctx context.Context) (int, error) {
	return m.SizeFunc(ctx)
}

func TestSearchHandler_Search(t *testing.T) {
	t.Parallel()

	qID := uuid.New()
	svc := &searchServiceMock{
		SearchFunc: func(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error) {
			if input.Query != "goroutine channel" {
				t.Errorf("query = %q", input.Query)
			}
			if input.Limit != 10 {
				t.Errorf("limit = %d, want 10", input.Limit)
			}
			return &domain.SearchResponse{
				Query: input.Query,
				Results: []domain.SearchResult{{
					QuestionID: qID,
					Question:   "what is a goroutine",
					Answer:     "a lightweight thread",
					Highlight:  "what is a <mark>goroutine</mark>",
					Score:      0.5,
				}},
				TotalCount: 1,
			}, nil
		},
	}
	h := NewSearchHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=goroutine+channel&limit=10", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp domain.SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalCount != 1 || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Results[0].Highlight != "what is a <mark>goroutine</mark>" {
		t.Errorf("highlight = %q", resp.Results[0].Highlight)
	}
}

func TestSearchHandler_Unavailable503(t *testing.T) {
	t.Parallel()

	svc := &searchServiceMock{
		SearchFunc: func(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error) {
			return nil, domain.ErrSearchUnavailable
		},
	}
	h := NewSearchHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "search temporarily unavailable" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestSearchHandler_BadLimit400(t *testing.T) {
	t.Parallel()

	h := NewSearchHandler(&searchServiceMock{}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x&limit=abc", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchHandler_ZeroLimit400(t *testing.T) {
	t.Parallel()

	called := false
	svc := &searchServiceMock{
		SearchFunc: func(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error) {
			called = true
			return &domain.SearchResponse{}, nil
		},
	}
	h := NewSearchHandler(svc, slog.Default())

	// An explicit limit of 0 (or below) is out of range, not "use the
	// default": it must not be confused with an absent parameter.
	for _, limit := range []string{"0", "-1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x&limit="+limit, nil)
		rec := httptest.NewRecorder()
		h.Search(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
	if called {
		t.Error("service called despite out-of-range limit")
	}
}

func TestSearchHandler_AbsentLimitUsesDefault(t *testing.T) {
	t.Parallel()

	svc := &searchServiceMock{
		SearchFunc: func(ctx context.Context, input search.SearchInput) (*domain.SearchResponse, error) {
			if input.Limit != 0 {
				t.Errorf("limit = %d, want 0 (service default)", input.Limit)
			}
			return &domain.SearchResponse{Query: input.Query, Results: []domain.SearchResult{}}, nil
		},
	}
	h := NewSearchHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=x", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestSearchHandler_Rebuild(t *testing.T) {
	t.Parallel()

	svc := &searchServiceMock{
		RebuildFunc: func(ctx context.Context) (int, error) {
			return 42, nil
		},
	}
	h := NewSearchHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/rebuild", nil)
	rec := httptest.NewRecorder()
	h.Rebuild(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp rebuildResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.IndexedCount != 42 {
		t.Errorf("indexed_count = %d, want 42", resp.IndexedCount)
	}
}
