package db

import (
	"time"

	"github.com/google/uuid"
)

// JobApplication is a candidate's application to a job posting.
type JobApplication struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ResumeURL string    `json:"resume_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplicationInput creates a job application.
type ApplicationInput struct {
	JobID     uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	ResumeURL string
}
