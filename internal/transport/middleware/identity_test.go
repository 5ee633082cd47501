package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

type userEnsurerMock struct {
	EnsureExistsFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	calls            int
}

func (m *userEnsurerMock) EnsureExists(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.calls++
	return m.EnsureExistsFunc(ctx, id)
}

func TestIdentity_ResolvesHeader(t *testing.T) {
	userID := uuid.New()
	users := &userEnsurerMock{
		EnsureExistsFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id != userID {
				t.Errorf("EnsureExists got id %v, want %v", id, userID)
			}
			return &domain.User{ID: id}, nil
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := ctxutil.UserIDFromCtx(r.Context())
		if !ok || got != userID {
			t.Errorf("context user = %v (ok=%v), want %v", got, ok, userID)
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Identity(slog.Default(), users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", userID.String())
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if users.calls != 1 {
		t.Errorf("EnsureExists calls = %d, want 1", users.calls)
	}
}

func TestIdentity_NoHeaderStaysAnonymous(t *testing.T) {
	users := &userEnsurerMock{
		EnsureExistsFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
			t.Error("expected no userID in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Identity(slog.Default(), users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if users.calls > 0 {
		t.Error("EnsureExists should not be called without the header")
	}
}

func TestIdentity_TokenUserTakesPrecedence(t *testing.T) {
	tokenUser := uuid.New()
	users := &userEnsurerMock{
		EnsureExistsFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ := ctxutil.UserIDFromCtx(r.Context())
		if got != tokenUser {
			t.Errorf("context user = %v, want token user %v", got, tokenUser)
		}
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Identity(slog.Default(), users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", uuid.New().String())
	req = req.WithContext(ctxutil.WithUserID(req.Context(), tokenUser))
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if users.calls > 0 {
		t.Error("EnsureExists should not be called when a token user is present")
	}
}

func TestIdentity_MalformedHeaderRejected(t *testing.T) {
	users := &userEnsurerMock{
		EnsureExistsFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, errors.New("should not be called")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for a malformed id")
	})

	wrapped := Identity(slog.Default(), users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestIdentity_EnsureFailureIs500(t *testing.T) {
	users := &userEnsurerMock{
		EnsureExistsFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return nil, errors.New("db down")
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run when identity resolution fails")
	})

	wrapped := Identity(slog.Default(), users)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", uuid.New().String())
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}
