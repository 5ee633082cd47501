package question

import "github.com/typedrill/typedrill-backend/internal/domain"

// Filter defines parameters for listing questions inside a study book.
type Filter struct {
	// Language filters on the exact language tag. nil means no filter.
	Language *string

	// Category filters on the exact category. nil means no filter.
	Category *string

	// Difficulty filters on the difficulty grade. nil means no filter.
	Difficulty *domain.Difficulty

	// Limit is the maximum number of questions to return. Default: 50, max: 200.
	Limit int

	// Offset is the number of questions to skip (offset-based pagination).
	Offset int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// normalize applies defaults and clamps values.
func (f *Filter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
