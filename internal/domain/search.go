package domain

import "github.com/google/uuid"

// SearchResult is a single ranked full-text match.
type SearchResult struct {
	QuestionID uuid.UUID `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	// Highlight is a snippet with <mark>…</mark> around matched terms. Falls
	// back to the full question text when the index cannot produce a snippet.
	Highlight string `json:"highlight"`
	// Score is normalized into (0, 1]; higher is always more relevant.
	Score float64 `json:"score"`
}

// SearchResponse wraps a full search reply.
type SearchResponse struct {
	Query      string         `json:"query"`
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
}
