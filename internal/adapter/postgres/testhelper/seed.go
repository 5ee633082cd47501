package testhelper

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedUser inserts a user with a unique email and returns its id.
func SeedUser(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	email := fmt.Sprintf("user-%s@example.com", id)
	now := time.Now().UTC()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, NULL, $4, $4)`,
		id, "test user", email, now)
	if err != nil {
		t.Fatalf("testhelper: seed user: %v", err)
	}
	return id
}

// SeedStudyBook inserts a study book for the given owner and returns its id.
func SeedStudyBook(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO study_books (id, user_id, title, description, created_at, updated_at)
		 VALUES ($1, $2, $3, NULL, $4, $4)`,
		id, userID, "seed book", now)
	if err != nil {
		t.Fatalf("testhelper: seed study book: %v", err)
	}
	return id
}

// SeedQuestion inserts a question into a study book, together with its index
// row, and returns the question id.
func SeedQuestion(t *testing.T, pool *pgxpool.Pool, bookID uuid.UUID, question, answer string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	now := time.Now().UTC()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO questions (id, study_book_id, language, category, difficulty, question, answer, created_at, updated_at)
		 VALUES ($1, $2, 'go', 'general', 'easy', $3, $4, $5, $5)`,
		id, bookID, question, answer, now)
	if err != nil {
		t.Fatalf("testhelper: seed question: %v", err)
	}

	_, err = pool.Exec(context.Background(),
		`INSERT INTO search_entries (question_id, question, answer, tsv)
		 VALUES ($1, $2, $3, to_tsvector('simple', $2 || ' ' || $3))`,
		id, question, answer)
	if err != nil {
		t.Fatalf("testhelper: seed search entry: %v", err)
	}
	return id
}
