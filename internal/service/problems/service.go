// Package problems serves the built-in practice problem catalog. The catalog
// is static per process and shared across users, so entries are loaded lazily
// and cached; a language is loaded at most once per process until Clear.
package problems

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

// loader produces the problem set for one normalized language key. An
// unknown language yields an empty set, not an error.
type loader func(language string) []domain.Problem

// Service implements the problem catalog with a lazily populated cache.
// The mutex is held across the load, which also makes the load single-flight:
// concurrent requests for a cold language wait for one load instead of
// racing their own.
type Service struct {
	log  *slog.Logger
	load loader

	mu    sync.Mutex
	cache map[string][]domain.Problem
	loads int
}

// NewService creates a new Problems service backed by the built-in catalog.
func NewService(log *slog.Logger) *Service {
	return &Service{
		log:   log.With("service", "problems"),
		load:  catalogLoader,
		cache: make(map[string][]domain.Problem),
	}
}

// newServiceWithLoader is the test seam for observing load behavior.
func newServiceWithLoader(log *slog.Logger, load loader) *Service {
	return &Service{
		log:   log.With("service", "problems"),
		load:  load,
		cache: make(map[string][]domain.Problem),
	}
}

// Languages returns the catalog's language keys, sorted.
func (s *Service) Languages(ctx context.Context) []string {
	languages := make([]string, 0, len(catalog))
	for lang := range catalog {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// ProblemsForLanguage returns the problem set for one language. The key is
// normalized first, so "Python3" and " python3 " hit the same cache slot.
// An unknown language returns an empty set, never an error.
func (s *Service) ProblemsForLanguage(ctx context.Context, language string) ([]domain.Problem, error) {
	key := domain.NormalizeLanguage(language)
	if key == "" {
		return nil, domain.NewValidationError("language", "required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}

	problems := s.load(key)
	s.cache[key] = problems
	s.loads++

	s.log.InfoContext(ctx, "problem catalog loaded",
		slog.String("language", key),
		slog.Int("problems", len(problems)),
	)

	return problems, nil
}

// Warm preloads every catalog language. Useful at startup to take the load
// cost off the first request.
func (s *Service) Warm(ctx context.Context) {
	for _, lang := range s.Languages(ctx) {
		if _, err := s.ProblemsForLanguage(ctx, lang); err != nil {
			s.log.WarnContext(ctx, "warm failed",
				slog.String("language", lang),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Clear drops every cached entry. The next request per language loads again.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = make(map[string][]domain.Problem)
	s.log.InfoContext(ctx, "problem cache cleared")
}

// LoadCount reports how many catalog loads have happened since process start.
func (s *Service) LoadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
