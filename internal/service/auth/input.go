package auth

import (
	"strings"

	"github.com/typedrill/typedrill-backend/internal/domain"
)

// Credential bounds.
const (
	minPasswordLen = 8
	maxPasswordLen = 128
	maxNameLen     = 100
	maxEmailLen    = 255
)

// RegisterInput holds the parameters for registering with a password.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks all fields and collects all errors.
func (i *RegisterInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(i.Name) > maxNameLen {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}
	errs = append(errs, validateEmail(i.Email)...)
	if len(i.Password) < minPasswordLen {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	} else if len(i.Password) > maxPasswordLen {
		errs = append(errs, domain.FieldError{Field: "password", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// LoginInput holds the parameters for password login.
type LoginInput struct {
	Email    string
	Password string
}

// Validate checks all fields and collects all errors.
func (i *LoginInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateEmail(i.Email)...)
	if i.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// RefreshInput holds the parameters for refresh token rotation.
type RefreshInput struct {
	RefreshToken string
}

// Validate checks all fields and collects all errors.
func (i *RefreshInput) Validate() error {
	if strings.TrimSpace(i.RefreshToken) == "" {
		return domain.NewValidationError("refresh_token", "required")
	}
	return nil
}

// LogoutInput holds the parameters for logout.
type LogoutInput struct {
	RefreshToken string
	Everywhere   bool
}

// Validate checks all fields and collects all errors.
func (i *LogoutInput) Validate() error {
	if strings.TrimSpace(i.RefreshToken) == "" {
		return domain.NewValidationError("refresh_token", "required")
	}
	return nil
}

func validateEmail(email string) []domain.FieldError {
	var errs []domain.FieldError

	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
		return errs
	}
	if len(trimmed) > maxEmailLen {
		errs = append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}
	at := strings.Index(trimmed, "@")
	if at <= 0 || at == len(trimmed)-1 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	return errs
}
