package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanAdmin(row pgx.Row) (*Admin, error) {
	var a Admin
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAdmin stores an admin account. Emails are stored lower-cased.
func (db *DB) CreateAdmin(ctx context.Context, email, passwordHash string) (*Admin, error) {
	a, err := scanAdmin(db.pool.QueryRow(ctx,
		`INSERT INTO admins (email, password_hash) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, email, password_hash, created_at`,
		strings.ToLower(strings.TrimSpace(email)), passwordHash))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return a, nil
}

// GetAdminByEmail looks up an admin by email. A missing admin yields (nil, nil).
func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	a, err := scanAdmin(db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return a, nil
}

// GetAdmin looks up an admin by ID. A missing admin yields (nil, nil).
func (db *DB) GetAdmin(ctx context.Context, id uuid.UUID) (*Admin, error) {
	a, err := scanAdmin(db.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}
