package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	internalauth "github.com/typedrill/typedrill-backend/internal/auth"
	"github.com/typedrill/typedrill-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, name, email string, passwordHash *string) (*domain.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, name, email string, passwordHash *string) (*domain.User, error) {
	return m.CreateFunc(ctx, name, email, passwordHash)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

// mockTokenRepo keeps tokens in memory, keyed by hash.
type mockTokenRepo struct {
	tokens map[string]*domain.RefreshToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockTokenRepo) Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	t := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	m.tokens[tokenHash] = t
	return t, nil
}

func (m *mockTokenRepo) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockTokenRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	for _, t := range m.tokens {
		if t.ID == id && t.RevokedAt == nil {
			t.RevokedAt = &now
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockTokenRepo) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	now := time.Now().UTC()
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for hash, t := range m.tokens {
		if t.ExpiresAt.Before(now) {
			delete(m.tokens, hash)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(users *mockUserRepo, tokens *mockTokenRepo) (*Service, *mockTokenRepo) {
	if tokens == nil {
		tokens = newMockTokenRepo()
	}
	jwt := internalauth.NewJWTManager("0123456789abcdef0123456789abcdef", "typedrill-test", time.Hour)
	return NewService(slog.Default(), users, tokens, jwt, 24*time.Hour), tokens
}

func hashOf(password string) *string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s := string(h)
	return &s
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestService_Register(t *testing.T) {
	t.Parallel()

	var storedHash *string
	users := &mockUserRepo{
		CreateFunc: func(ctx context.Context, name, email string, passwordHash *string) (*domain.User, error) {
			storedHash = passwordHash
			return &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash}, nil
		},
	}
	svc, tokens := newTestService(users, nil)

	result, err := svc.Register(context.Background(), RegisterInput{
		Name:     "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// The password is stored hashed, never raw.
	require.NotNil(t, storedHash)
	assert.NotEqual(t, "correct horse", *storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*storedHash), []byte("correct horse")))

	// Only the refresh token hash is stored.
	_, ok := tokens.tokens[result.RefreshToken]
	assert.False(t, ok, "raw refresh token must not be a storage key")
	_, ok = tokens.tokens[internalauth.HashToken(result.RefreshToken)]
	assert.True(t, ok)
}

func TestService_Register_ShortPassword(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(&mockUserRepo{}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "bob",
		Email:    "bob@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestService_Login(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: userID, Email: email, PasswordHash: hashOf("opensesame")}, nil
		},
	}
	svc, _ := newTestService(users, nil)

	result, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
	require.NoError(t, err)
	assert.Equal(t, userID, result.User.ID)
	assert.NotEmpty(t, result.AccessToken)
}

func TestService_Login_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		users *mockUserRepo
	}{
		{
			name: "unknown email",
			users: &mockUserRepo{
				GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					return nil, domain.ErrNotFound
				},
			},
		},
		{
			name: "no password set",
			users: &mockUserRepo{
				GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					return &domain.User{ID: uuid.New(), Email: email}, nil
				},
			},
		},
		{
			name: "wrong password",
			users: &mockUserRepo{
				GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
					return &domain.User{ID: uuid.New(), Email: email, PasswordHash: hashOf("other")}, nil
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestService(tt.users, nil)

			_, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

// ---------------------------------------------------------------------------
// Refresh
// ---------------------------------------------------------------------------

func TestService_Refresh_RotatesToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	users := &mockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: userID, Email: email, PasswordHash: hashOf("opensesame")}, nil
		},
	}
	svc, _ := newTestService(users, nil)

	login, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token is spent: presenting it again is unauthorized.
	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// The new token still works.
	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestService_Refresh_UnknownToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(&mockUserRepo{}, nil)

	_, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: "never-issued"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_Refresh_ExpiredToken(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	tokens := newMockTokenRepo()
	hash := internalauth.HashToken("expired-raw")
	tokens.tokens[hash] = &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	svc, _ := newTestService(&mockUserRepo{}, tokens)

	_, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: "expired-raw"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestService_Logout(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: userID, Email: email, PasswordHash: hashOf("opensesame")}, nil
		},
	}
	svc, _ := newTestService(users, nil)

	login, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), LogoutInput{RefreshToken: login.RefreshToken}))

	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Logging out an already dead token still succeeds.
	assert.NoError(t, svc.Logout(context.Background(), LogoutInput{RefreshToken: login.RefreshToken}))
	assert.NoError(t, svc.Logout(context.Background(), LogoutInput{RefreshToken: "never-issued"}))
}

func TestService_Logout_Everywhere(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	users := &mockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: userID, Email: email, PasswordHash: hashOf("opensesame")}, nil
		},
	}
	svc, _ := newTestService(users, nil)

	first, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
	require.NoError(t, err)
	second, err := svc.Login(context.Background(), LoginInput{Email: "a@example.com", Password: "opensesame"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), LogoutInput{RefreshToken: first.RefreshToken, Everywhere: true}))

	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: second.RefreshToken})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
