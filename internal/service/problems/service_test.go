package problems

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

func TestService_Languages_SortedAndComplete(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default())

	languages := svc.Languages(context.Background())
	require.NotEmpty(t, languages)
	assert.IsIncreasing(t, languages)
	assert.Contains(t, languages, "html")
	assert.Contains(t, languages, "python3")
	assert.Contains(t, languages, "git")
}

func TestService_ProblemsForLanguage_NormalizesKey(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default())
	ctx := context.Background()

	base, err := svc.ProblemsForLanguage(ctx, "javascript")
	require.NoError(t, err)
	require.NotEmpty(t, base)

	for _, spelling := range []string{"JavaScript", "  javascript  ", "JAVASCRIPT"} {
		got, err := svc.ProblemsForLanguage(ctx, spelling)
		require.NoError(t, err, "spelling %q", spelling)
		assert.Equal(t, base, got, "spelling %q", spelling)
	}

	// All spellings share one cache slot, so there was exactly one load.
	assert.Equal(t, 1, svc.LoadCount())
}

func TestService_ProblemsForLanguage_UnknownIsEmptyNotError(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default())

	got, err := svc.ProblemsForLanguage(context.Background(), "cobol")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_ProblemsForLanguage_EmptyKeyIsValidation(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default())

	_, err := svc.ProblemsForLanguage(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_LoadsOncePerLanguage(t *testing.T) {
	t.Parallel()

	var loaderCalls int
	svc := newServiceWithLoader(slog.Default(), func(language string) []domain.Problem {
		loaderCalls++
		return []domain.Problem{{Question: language, Answer: language}}
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.ProblemsForLanguage(ctx, "go")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loaderCalls)
	assert.Equal(t, 1, svc.LoadCount())

	_, err := svc.ProblemsForLanguage(ctx, "rust")
	require.NoError(t, err)
	assert.Equal(t, 2, loaderCalls)
	assert.Equal(t, 2, svc.LoadCount())
}

func TestService_ConcurrentRequestsSingleLoad(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	loaderCalls := 0
	svc := newServiceWithLoader(slog.Default(), func(language string) []domain.Problem {
		mu.Lock()
		loaderCalls++
		mu.Unlock()
		return []domain.Problem{{Question: "q", Answer: "a"}}
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ProblemsForLanguage(context.Background(), "go")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, loaderCalls)
}

func TestService_Clear_ForcesReload(t *testing.T) {
	t.Parallel()

	var loaderCalls int
	svc := newServiceWithLoader(slog.Default(), func(language string) []domain.Problem {
		loaderCalls++
		return []domain.Problem{}
	})
	ctx := context.Background()

	_, err := svc.ProblemsForLanguage(ctx, "go")
	require.NoError(t, err)
	svc.Clear(ctx)
	_, err = svc.ProblemsForLanguage(ctx, "go")
	require.NoError(t, err)

	assert.Equal(t, 2, loaderCalls)
}

func TestService_Warm_PopulatesEveryLanguage(t *testing.T) {
	t.Parallel()
	svc := NewService(slog.Default())
	ctx := context.Background()

	svc.Warm(ctx)
	want := len(svc.Languages(ctx))
	assert.Equal(t, want, svc.LoadCount())

	// Warm again: everything is cached, no further loads.
	svc.Warm(ctx)
	assert.Equal(t, want, svc.LoadCount())
}

func TestCatalog_ProblemsAreTypingMaterial(t *testing.T) {
	t.Parallel()

	for lang, problems := range catalog {
		for i, p := range problems {
			assert.NotEmpty(t, p.Question, "%s[%d]", lang, i)
			assert.Equal(t, p.Question, p.Answer, "%s[%d]: typing material mirrors question and answer", lang, i)
			assert.NotEmpty(t, p.Category, "%s[%d]", lang, i)
			switch p.Difficulty {
			case domain.ProblemLevelBeginner, domain.ProblemLevelIntermediate, domain.ProblemLevelAdvanced:
			default:
				t.Errorf("%s[%d]: invalid difficulty %q", lang, i, p.Difficulty)
			}
		}
	}
}
