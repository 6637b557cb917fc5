package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a connection pool to PostgreSQL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies every *.sql file in migrationsDir in name order. The
// files are written to be re-runnable.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrationsDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no migrations in %s", migrationsDir)
	}

	applied := make([]string, 0, len(files))
	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return applied, fmt.Errorf("read migration file: %w", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return applied, fmt.Errorf("execute migration %s: %w", filepath.Base(file), err)
		}
		applied = append(applied, filepath.Base(file))
	}
	return applied, nil
}
