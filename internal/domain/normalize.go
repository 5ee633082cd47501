package domain

import "strings"

// NormalizeEmail prepares an email address for storage and uniqueness
// comparison: trims surrounding whitespace and lowercases. Emails are stored
// normalized so the unique index catches case-variant duplicates.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeLanguage folds a language name into the catalog key form:
// trimmed and lowercased. "JavaScript", "javascript" and "  JAVASCRIPT "
// all resolve to the same key.
func NormalizeLanguage(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
