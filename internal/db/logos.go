package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Client Logo Methods
// -----------------------------------------------------------------------------

func scanLogo(row pgx.Row) (*ClientLogo, error) {
	var l ClientLogo
	if err := row.Scan(&l.ID, &l.Name, &l.ImageURL, &l.DisplayOrder, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (db *DB) queryLogos(ctx context.Context, query string) ([]ClientLogo, error) {
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list client logos: %w", err)
	}
	defer rows.Close()

	logos := []ClientLogo{}
	for rows.Next() {
		l, err := scanLogo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client logo: %w", err)
		}
		logos = append(logos, *l)
	}
	return logos, rows.Err()
}

// ListActiveLogos returns active logos in display order.
func (db *DB) ListActiveLogos(ctx context.Context) ([]ClientLogo, error) {
	return db.queryLogos(ctx,
		`SELECT `+logoColumns+` FROM client_logos WHERE is_active ORDER BY display_order, name`)
}

// ListLogos returns every logo in display order, for the admin panel.
func (db *DB) ListLogos(ctx context.Context) ([]ClientLogo, error) {
	return db.queryLogos(ctx,
		`SELECT `+logoColumns+` FROM client_logos ORDER BY display_order, name`)
}

// CreateLogo stores a new logo.
func (db *DB) CreateLogo(ctx context.Context, in LogoInput) (*ClientLogo, error) {
	l, err := scanLogo(db.pool.QueryRow(ctx,
		`INSERT INTO client_logos (name, image_url, display_order, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+logoColumns,
		in.Name, in.ImageURL, in.DisplayOrder, in.IsActive))
	if err != nil {
		return nil, fmt.Errorf("failed to create client logo: %w", err)
	}
	return l, nil
}

// UpdateLogo applies the supplied fields. ErrNotFound when the ID is unknown.
func (db *DB) UpdateLogo(ctx context.Context, id uuid.UUID, fields LogoFields) (*ClientLogo, error) {
	sets := fields.assignments()
	if len(sets) == 0 {
		l, err := scanLogo(db.pool.QueryRow(ctx,
			`SELECT `+logoColumns+` FROM client_logos WHERE id = $1`, id))
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return l, err
	}

	query, args := buildUpdate("client_logos", sets, false, logoColumns)
	args = append(args, id)
	l, err := scanLogo(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update client logo: %w", err)
	}
	return l, nil
}

// DeleteLogo removes a logo. ErrNotFound when the ID is unknown.
func (db *DB) DeleteLogo(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM client_logos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client logo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
