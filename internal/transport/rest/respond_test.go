package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

func TestHandleError_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", domain.NewValidationError("title", "required"), http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"already exists", domain.ErrAlreadyExists, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"search unavailable", domain.ErrSearchUnavailable, http.StatusServiceUnavailable},
		{"wrapped not found", errors.Join(errors.New("get book"), domain.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handleError(slog.Default(), rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleError_ValidationFieldsInBody(t *testing.T) {
	t.Parallel()

	err := domain.NewValidationErrors([]domain.FieldError{
		{Field: "title", Message: "required"},
		{Field: "limit", Message: "must be between 0 and 200"},
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	handleError(slog.Default(), rec, req, err)

	var resp errorResponse
	if decErr := json.NewDecoder(rec.Body).Decode(&resp); decErr != nil {
		t.Fatalf("decode: %v", decErr)
	}
	if len(resp.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(resp.Fields))
	}
	if resp.Fields[0].Field != "title" || resp.Fields[1].Field != "limit" {
		t.Errorf("unexpected fields: %+v", resp.Fields)
	}
}

func TestHandleError_InternalErrorIsOpaque(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handleError(slog.Default(), rec, req, errors.New("pq: password authentication failed"))

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "internal server error" {
		t.Errorf("error = %q, internals must not leak", resp.Error)
	}
}
