package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Contact Submission Methods
// -----------------------------------------------------------------------------

// InsertSubmission stores a form submission and returns the stored row.
func (db *DB) InsertSubmission(ctx context.Context, in SubmissionInput) (*Submission, error) {
	var s Submission
	err := db.pool.QueryRow(ctx,
		`INSERT INTO contact_submissions (type, first_name, last_name, email, phone_number,
		                                  category, message, company_name, job_title,
		                                  service_required, specialty_needed, office_location,
		                                  details, agree_to_newsletter, agree_to_contact)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, type, first_name, last_name, email, phone_number, category, message,
		           company_name, job_title, service_required, specialty_needed,
		           office_location, details, agree_to_newsletter, agree_to_contact,
		           email_sent, email_sent_at, created_at`,
		in.Type, in.FirstName, in.LastName, in.Email, in.PhoneNumber,
		in.Category, in.Message, in.CompanyName, in.JobTitle,
		in.ServiceRequired, in.SpecialtyNeeded, in.OfficeLocation,
		in.Details, in.AgreeToNewsletter, in.AgreeToContact,
	).Scan(&s.ID, &s.Type, &s.FirstName, &s.LastName, &s.Email, &s.PhoneNumber,
		&s.Category, &s.Message, &s.CompanyName, &s.JobTitle, &s.ServiceRequired,
		&s.SpecialtyNeeded, &s.OfficeLocation, &s.Details, &s.AgreeToNewsletter,
		&s.AgreeToContact, &s.EmailSent, &s.EmailSentAt, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}
	return &s, nil
}

// MarkSubmissionEmailSent records that the notification email went out.
func (db *DB) MarkSubmissionEmailSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE contact_submissions SET email_sent = TRUE, email_sent_at = $1 WHERE id = $2`,
		sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark submission email sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
