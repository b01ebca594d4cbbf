package migrations

import (
	"context"
	"fmt"

	"league-markov/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded PostgreSQL files in lexical order.
// Files are sent whole; Postgres accepts multi-statement Exec. Migrations are idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	scripts, err := load(PostgresFS, "postgres", false)
	if err != nil {
		return err
	}

	for _, s := range scripts {
		for _, stmt := range s.statements {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", s.name, err)
			}
		}
	}
	return nil
}
