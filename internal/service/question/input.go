package question

import (
	"strings"

	"github.com/google/uuid"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Field length limits for question content.
const (
	maxLanguageLen = 50
	maxCategoryLen = 100
	maxTextLen     = 10_000
)

// CreateQuestionInput holds the parameters for creating a question.
type CreateQuestionInput struct {
	StudyBookID uuid.UUID
	Language    string
	Category    string
	Difficulty  domain.Difficulty
	Question    string
	Answer      string
}

// Validate checks all fields and collects all errors.
func (i *CreateQuestionInput) Validate() error {
	var errs []domain.FieldError

	if i.StudyBookID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "study_book_id", Message: "required"})
	}
	errs = append(errs, validateContent(i.Language, i.Category, i.Difficulty, i.Question, i.Answer)...)

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// GetQuestionInput holds the parameters for fetching one question.
type GetQuestionInput struct {
	QuestionID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *GetQuestionInput) Validate() error {
	if i.QuestionID == uuid.Nil {
		return domain.NewValidationError("question_id", "required")
	}
	return nil
}

// ListQuestionsInput holds the parameters for listing questions in a book.
type ListQuestionsInput struct {
	StudyBookID uuid.UUID
	Language    *string
	Category    *string
	Difficulty  *domain.Difficulty
	Limit       int
	Offset      int
}

// Validate checks all fields and collects all errors.
func (i *ListQuestionsInput) Validate() error {
	var errs []domain.FieldError

	if i.StudyBookID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "study_book_id", Message: "required"})
	}
	if i.Difficulty != nil && !i.Difficulty.IsValid() {
		errs = append(errs, domain.FieldError{Field: "difficulty", Message: "must be easy, medium, or hard"})
	}
	if i.Limit < 0 || i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be between 0 and 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RandomQuestionInput holds the parameters for drawing a random question.
type RandomQuestionInput struct {
	StudyBookID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *RandomQuestionInput) Validate() error {
	if i.StudyBookID == uuid.Nil {
		return domain.NewValidationError("study_book_id", "required")
	}
	return nil
}

// UpdateQuestionInput holds the parameters for updating a question.
// All content fields are replaced; there is no partial update.
type UpdateQuestionInput struct {
	QuestionID uuid.UUID
	Language   string
	Category   string
	Difficulty domain.Difficulty
	Question   string
	Answer     string
}

// Validate checks all fields and collects all errors.
func (i *UpdateQuestionInput) Validate() error {
	var errs []domain.FieldError

	if i.QuestionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "question_id", Message: "required"})
	}
	errs = append(errs, validateContent(i.Language, i.Category, i.Difficulty, i.Question, i.Answer)...)

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// DeleteQuestionInput holds the parameters for deleting a question.
type DeleteQuestionInput struct {
	QuestionID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i *DeleteQuestionInput) Validate() error {
	if i.QuestionID == uuid.Nil {
		return domain.NewValidationError("question_id", "required")
	}
	return nil
}

func validateContent(language, category string, difficulty domain.Difficulty, question, answer string) []domain.FieldError {
	var errs []domain.FieldError

	if strings.TrimSpace(language) == "" {
		errs = append(errs, domain.FieldError{Field: "language", Message: "required"})
	} else if len(language) > maxLanguageLen {
		errs = append(errs, domain.FieldError{Field: "language", Message: "too long"})
	}
	if len(category) > maxCategoryLen {
		errs = append(errs, domain.FieldError{Field: "category", Message: "too long"})
	}
	if !difficulty.IsValid() {
		errs = append(errs, domain.FieldError{Field: "difficulty", Message: "must be easy, medium, or hard"})
	}
	if strings.TrimSpace(question) == "" {
		errs = append(errs, domain.FieldError{Field: "question", Message: "required"})
	} else if len(question) > maxTextLen {
		errs = append(errs, domain.FieldError{Field: "question", Message: "too long"})
	}
	if strings.TrimSpace(answer) == "" {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "required"})
	} else if len(answer) > maxTextLen {
		errs = append(errs, domain.FieldError{Field: "answer", Message: "too long"})
	}

	return errs
}
