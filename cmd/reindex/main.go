// Command reindex rebuilds the full-text search index from the questions
// table. Safe to run while the server is up: the rebuild is atomic.
//
// Usage:
//
//	reindex
//
// Requires DATABASE_DSN environment variable to be set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/typedrill/typedrill-backend/internal/adapter/postgres"
	"github.com/typedrill/typedrill-backend/internal/adapter/postgres/searchindex"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	index := searchindex.New(pool)
	tx := postgres.NewTxManager(pool)

	var indexed int
	err = tx.RunInTx(ctx, func(ctx context.Context) error {
		n, err := index.Rebuild(ctx)
		if err != nil {
			return err
		}
		indexed = n
		return nil
	})
	if err != nil {
		log.Fatalf("rebuild index: %v", err)
	}

	fmt.Printf("Indexed %d questions.\n", indexed)
}
