package auth

import "github.com/typedrill/typedrill-backend/internal/domain"

// AuthResult is the outcome of a successful register, login, or refresh:
// the user plus a fresh access/refresh token pair. RefreshToken is the raw
// value; only its hash is stored.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}
