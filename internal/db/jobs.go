package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Job Methods
// -----------------------------------------------------------------------------

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Title, &j.Department, &j.Location, &j.Description,
		&j.Requirements, &j.IsNew, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// ListJobs returns every job, newest first.
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a job by ID. A missing job yields (nil, nil).
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// CreateJob inserts a job from the supplied fields and returns the stored row.
func (db *DB) CreateJob(ctx context.Context, fields JobFields) (*Job, error) {
	query, args := buildInsert("jobs", fields.assignments(), jobColumns)
	j, err := scanJob(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return j, nil
}

// UpdateJob applies the supplied fields, stamps updated_at and returns the
// updated row. ErrNotFound is returned when no job has the given ID.
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, fields JobFields) (*Job, error) {
	query, args := buildUpdate("jobs", fields.assignments(), true, jobColumns)
	args = append(args, id)
	j, err := scanJob(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return j, nil
}

// DeleteJob removes a job. ErrNotFound is returned when no job has the given ID.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
