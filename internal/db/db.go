// Package db provides PostgreSQL access to the hosted site database.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by updates and deletes that matched no row.
var ErrNotFound = errors.New("record not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// assignment is one column = value pair of a partial insert or update.
type assignment struct {
	column string
	value  any
}

// buildUpdate renders "UPDATE table SET a = $1, b = $2, updated_at = NOW()
// WHERE id = $3 RETURNING cols". Column names come from typed field structs,
// never from request input.
func buildUpdate(table string, sets []assignment, stampUpdated bool, returning string) (string, []any) {
	parts := make([]string, 0, len(sets)+1)
	args := make([]any, 0, len(sets)+1)
	for i, a := range sets {
		parts = append(parts, fmt.Sprintf("%s = $%d", a.column, i+1))
		args = append(args, a.value)
	}
	if stampUpdated {
		parts = append(parts, "updated_at = NOW()")
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		table, strings.Join(parts, ", "), len(args)+1, returning)
	return query, args
}

// buildInsert renders an INSERT of only the supplied columns, falling back to
// DEFAULT VALUES so column defaults and constraints decide the outcome.
func buildInsert(table string, sets []assignment, returning string) (string, []any) {
	if len(sets) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s", table, returning), nil
	}
	cols := make([]string, 0, len(sets))
	placeholders := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets))
	for i, a := range sets {
		cols = append(cols, a.column)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, a.value)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), returning)
	return query, args
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
