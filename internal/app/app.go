// Package app wires configuration, storage, services, and transport into a
// runnable HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/typedrill/typedrill-backend/internal/adapter/postgres"
	learningeventrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/learningevent"
	questionrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/question"
	searchindexrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/searchindex"
	studybookrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/studybook"
	tokenrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/token"
	typinglogrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/typinglog"
	userrepo "github.com/typedrill/typedrill-backend/internal/adapter/postgres/user"
	jwtauth "github.com/typedrill/typedrill-backend/internal/auth"
	"github.com/typedrill/typedrill-backend/internal/config"
	authsvc "github.com/typedrill/typedrill-backend/internal/service/auth"
	learningeventsvc "github.com/typedrill/typedrill-backend/internal/service/learningevent"
	problemssvc "github.com/typedrill/typedrill-backend/internal/service/problems"
	questionsvc "github.com/typedrill/typedrill-backend/internal/service/question"
	searchsvc "github.com/typedrill/typedrill-backend/internal/service/search"
	studybooksvc "github.com/typedrill/typedrill-backend/internal/service/studybook"
	typinglogsvc "github.com/typedrill/typedrill-backend/internal/service/typinglog"
	usersvc "github.com/typedrill/typedrill-backend/internal/service/user"
	"github.com/typedrill/typedrill-backend/internal/transport/middleware"
	"github.com/typedrill/typedrill-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, applies migrations, wires services and transport, and
// serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Repositories.
	users := userrepo.New(pool)
	tokens := tokenrepo.New(pool)
	books := studybookrepo.New(pool)
	questions := questionrepo.New(pool)
	index := searchindexrepo.New(pool)
	typingLogs := typinglogrepo.New(pool)
	events := learningeventrepo.New(pool)
	tx := postgres.NewTxManager(pool)

	// Services.
	jwt := jwtauth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
	auth := authsvc.NewService(logger, users, tokens, jwt, cfg.Auth.RefreshTokenTTL)
	user := usersvc.NewService(logger, users)
	studyBook := studybooksvc.NewService(logger, books, index, tx)
	question := questionsvc.NewService(logger, questions, books, index, tx)
	search := searchsvc.NewService(logger, index, tx)
	typingLog := typinglogsvc.NewService(logger, typingLogs, questions)
	learningEvent := learningeventsvc.NewService(logger, events)
	problems := problemssvc.NewService(logger)

	if cfg.Search.RebuildOnStart {
		n, err := search.RebuildIndex(ctx)
		if err != nil {
			return fmt.Errorf("rebuild search index: %w", err)
		}
		logger.Info("search index rebuilt on start", slog.Int("entries", n))
	}
	if cfg.Search.WarmProblems {
		problems.Warm(ctx)
	}

	go cleanupExpiredTokens(ctx, logger, auth, cfg.Auth.TokenCleanupInterval)

	// Transport.
	rl := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer rl.Stop()

	handlers := rest.Handlers{
		Auth:           rest.NewAuthHandler(auth, logger),
		Users:          rest.NewUserHandler(user, logger),
		StudyBooks:     rest.NewStudyBookHandler(studyBook, logger),
		Questions:      rest.NewQuestionHandler(question, logger),
		TypingLogs:     rest.NewTypingLogHandler(typingLog, logger),
		LearningEvents: rest.NewLearningEventHandler(learningEvent, logger),
		Search:         rest.NewSearchHandler(search, logger),
		Problems:       rest.NewProblemsHandler(problems, logger),
		Health:         rest.NewHealthHandler(pool, search, BuildVersion()),
	}
	router := rest.NewRouter(handlers, rl.Limit(cfg.RateLimit.AuthPerMinute))

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Logger(logger),
		middleware.Auth(jwt),
		middleware.Identity(logger, user),
	)(router)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// cleanupExpiredTokens deletes expired refresh tokens on a fixed interval
// until ctx is cancelled.
func cleanupExpiredTokens(ctx context.Context, logger *slog.Logger, auth *authsvc.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.CleanupExpiredTokens(ctx)
			if err != nil {
				logger.WarnContext(ctx, "token cleanup failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				logger.InfoContext(ctx, "expired tokens deleted", slog.Int("count", n))
			}
		}
	}
}
