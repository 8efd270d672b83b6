package db

import (
	"context"
	"fmt"
)

// CreateApplication stores a job application. Applications are write-once.
func (db *DB) CreateApplication(ctx context.Context, in ApplicationInput) (*JobApplication, error) {
	var a JobApplication
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_applications (job_id, first_name, last_name, email, phone, resume_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, job_id, first_name, last_name, email, phone, resume_url, created_at`,
		in.JobID, in.FirstName, in.LastName, in.Email, in.Phone, in.ResumeURL,
	).Scan(&a.ID, &a.JobID, &a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.ResumeURL, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job application: %w", err)
	}
	return &a, nil
}
