// Package factory opens the configured match store with its migrations applied.
package factory

import (
	"context"
	"fmt"

	"league-markov/internal/config"
	"league-markov/internal/storage"
	chstore "league-markov/internal/storage/clickhouse"
	"league-markov/internal/storage/memory"
	"league-markov/internal/storage/migrations"
	pgstore "league-markov/internal/storage/postgres"
	"league-markov/internal/storage/sqlite"
)

// Open creates the match store for cfg, runs migrations and wraps it with
// query metrics. The returned cleanup closes the underlying connection.
func Open(ctx context.Context, cfg config.StorageConfig) (storage.MatchStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return storage.NewInstrumented(memory.NewMatchStore(), config.DriverMemory), func() {}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		store := storage.NewInstrumented(sqlite.NewMatchStore(db), config.DriverSQLite)
		return store, func() { db.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DSN, 0)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		store := storage.NewInstrumented(pgstore.NewMatchStore(pool), config.DriverPostgres)
		return store, pool.Close, nil

	case config.DriverClickhouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		store := storage.NewInstrumented(chstore.NewMatchStore(conn), config.DriverClickhouse)
		return store, func() { conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", storage.ErrInvalidInput, cfg.Driver)
	}
}
