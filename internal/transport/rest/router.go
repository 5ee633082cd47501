package rest

import (
	"net/http"
)

// Handlers bundles every REST handler the router mounts.
type Handlers struct {
	Auth           *AuthHandler
	Users          *UserHandler
	StudyBooks     *StudyBookHandler
	Questions      *QuestionHandler
	TypingLogs     *TypingLogHandler
	LearningEvents *LearningEventHandler
	Search         *SearchHandler
	Problems       *ProblemsHandler
	Health         *HealthHandler
}

// NewRouter mounts all REST routes on a ServeMux. authLimit wraps only the
// credential endpoints; everything else relies on the outer middleware chain.
func NewRouter(h Handlers, authLimit func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	limited := func(fn http.HandlerFunc) http.Handler {
		if authLimit == nil {
			return fn
		}
		return authLimit(fn)
	}

	// Auth.
	mux.Handle("POST /api/v1/auth/register", limited(h.Auth.Register))
	mux.Handle("POST /api/v1/auth/login", limited(h.Auth.Login))
	mux.Handle("POST /api/v1/auth/refresh", limited(h.Auth.Refresh))
	mux.HandleFunc("POST /api/v1/auth/logout", h.Auth.Logout)

	// Profile.
	mux.HandleFunc("GET /api/v1/users/me", h.Users.Me)
	mux.HandleFunc("PUT /api/v1/users/me", h.Users.UpdateMe)
	mux.HandleFunc("DELETE /api/v1/users/me", h.Users.DeleteMe)

	// Study books.
	mux.HandleFunc("POST /api/v1/study-books", h.StudyBooks.Create)
	mux.HandleFunc("GET /api/v1/study-books", h.StudyBooks.List)
	mux.HandleFunc("GET /api/v1/study-books/{id}", h.StudyBooks.Get)
	mux.HandleFunc("PUT /api/v1/study-books/{id}", h.StudyBooks.Update)
	mux.HandleFunc("DELETE /api/v1/study-books/{id}", h.StudyBooks.Delete)

	// Questions.
	mux.HandleFunc("POST /api/v1/study-books/{bookID}/questions", h.Questions.Create)
	mux.HandleFunc("GET /api/v1/study-books/{bookID}/questions", h.Questions.List)
	mux.HandleFunc("GET /api/v1/study-books/{bookID}/questions/random", h.Questions.GetRandom)
	mux.HandleFunc("GET /api/v1/questions/{id}", h.Questions.Get)
	mux.HandleFunc("PUT /api/v1/questions/{id}", h.Questions.Update)
	mux.HandleFunc("DELETE /api/v1/questions/{id}", h.Questions.Delete)

	// Typing logs.
	mux.HandleFunc("POST /api/v1/typing-logs", h.TypingLogs.Create)
	mux.HandleFunc("GET /api/v1/typing-logs", h.TypingLogs.List)
	mux.HandleFunc("GET /api/v1/typing-logs/{id}", h.TypingLogs.Get)

	// Learning events.
	mux.HandleFunc("POST /api/v1/learning-events", h.LearningEvents.Create)
	mux.HandleFunc("GET /api/v1/learning-events", h.LearningEvents.List)
	mux.HandleFunc("GET /api/v1/learning-events/{id}", h.LearningEvents.Get)

	// Search.
	mux.HandleFunc("GET /api/v1/search", h.Search.Search)
	mux.HandleFunc("POST /api/v1/search/rebuild", h.Search.Rebuild)
	mux.HandleFunc("GET /api/v1/search/stats", h.Search.Stats)

	// Practice problems.
	mux.HandleFunc("GET /api/v1/problems/languages", h.Problems.Languages)
	mux.HandleFunc("GET /api/v1/problems/{language}", h.Problems.ForLanguage)
	mux.HandleFunc("POST /api/v1/problems/cache/clear", h.Problems.ClearCache)

	// Health.
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	return mux
}
