package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/typedrill/typedrill-backend/internal/auth"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Logout revokes the presented refresh token, or every live token of its
// owner when Everywhere is set. Logging out with an unknown token succeeds:
// the desired state is already true.
func (s *Service) Logout(ctx context.Context, input LogoutInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	hash := auth.HashToken(input.RefreshToken)

	token, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth.Logout get token: %w", err)
	}

	if input.Everywhere {
		if err := s.tokens.RevokeAllForUser(ctx, token.UserID); err != nil {
			return fmt.Errorf("auth.Logout revoke all: %w", err)
		}
	} else if !token.IsRevoked() {
		if err := s.tokens.Revoke(ctx, token.ID); err != nil {
			return fmt.Errorf("auth.Logout revoke: %w", err)
		}
	}

	s.log.InfoContext(ctx, "user logged out",
		slog.String("user_id", token.UserID.String()),
		slog.Bool("everywhere", input.Everywhere))

	return nil
}
