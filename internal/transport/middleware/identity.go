package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
	"github.com/typedrill/typedrill-backend/pkg/ctxutil"
)

type userEnsurer interface {
	EnsureExists(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Identity resolves the X-User-Id header for clients that identify
// themselves with a stable device id instead of a Bearer token. The user
// row is created on first use. A token-authenticated user already in the
// context takes precedence and the header is ignored.
func Identity(logger *slog.Logger, users userEnsurer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			raw := r.Header.Get("X-User-Id")
			if raw == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				http.Error(w, "invalid user id", http.StatusBadRequest)
				return
			}

			u, err := users.EnsureExists(r.Context(), id)
			if err != nil {
				logger.ErrorContext(r.Context(), "resolve identity header",
					slog.String("error", err.Error()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			ctx := ctxutil.WithUserID(r.Context(), u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
