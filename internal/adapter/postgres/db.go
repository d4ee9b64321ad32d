// Package postgres connects the pgx pool that backs the assignment_runs and
// assignment_records tables. The run, locker and eventbus subpackages share
// the pool returned by Connect.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "ticket-router"

// ErrSchemaMissing means the database is reachable but migrations have not
// been applied.
var ErrSchemaMissing = errors.New("assignment schema not found, apply migrations first")

// Connect opens a pool and verifies the assignment tables exist.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := checkSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func checkSchema(ctx context.Context, pool *pgxpool.Pool) error {
	var runs, records bool
	err := pool.QueryRow(ctx, `
		SELECT to_regclass('assignment_runs') IS NOT NULL,
		       to_regclass('assignment_records') IS NOT NULL`).Scan(&runs, &records)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !runs || !records {
		return ErrSchemaMissing
	}
	return nil
}
