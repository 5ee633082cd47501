package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for TypingLog fields.
const (
	MaxWPM = 1000
)

// TypingLog records one typing run. Logs are write-once: there is no update
// path anywhere in the system.
type TypingLog struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	QuestionID *uuid.UUID
	WPM        int
	Accuracy   float64
	TookMs     int
	CreatedAt  time.Time
}

// LearningEvent is an append-only activity record. UserID is a loosely typed
// external identifier, not necessarily a users.id value.
type LearningEvent struct {
	ID         uuid.UUID
	UserID     string
	AppID      string
	Action     string
	ObjectID   *string
	Score      *float64
	DurationMs *int
	OccurredAt time.Time
}
