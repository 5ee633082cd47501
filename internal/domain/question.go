package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty grades a question. Values are lowercase on the wire and in the
// database.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) String() string { return string(d) }

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is a single practice item inside a study book. Its effective owner
// is the owner of its study book; the row itself carries no user_id.
type Question struct {
	ID          uuid.UUID
	StudyBookID uuid.UUID
	Language    string
	Category    string
	Difficulty  Difficulty
	Question    string
	Answer      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
