package domain

import (
	"time"

	"github.com/google/uuid"
)

// StudyBook groups practice questions under a single owning user.
type StudyBook struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
