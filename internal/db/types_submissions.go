package db

import (
	"time"

	"github.com/google/uuid"
)

// Submission types stored in contact_submissions.type.
const (
	SubmissionTypeContact = "contact"
	SubmissionTypePartner = "partner"
)

// SubmissionInput is a contact or partner form submission ready for storage.
// Optional columns are nil when the form variant does not carry them.
type SubmissionInput struct {
	Type              string
	FirstName         string
	LastName          string
	Email             string
	PhoneNumber       *string
	Category          *string
	Message           *string
	CompanyName       *string
	JobTitle          *string
	ServiceRequired   *string
	SpecialtyNeeded   *string
	OfficeLocation    *string
	Details           *string
	AgreeToNewsletter bool
	AgreeToContact    bool
}

// Submission is a stored contact_submissions row.
type Submission struct {
	ID                uuid.UUID  `json:"id"`
	Type              string     `json:"type"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	PhoneNumber       *string    `json:"phone_number,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Message           *string    `json:"message,omitempty"`
	CompanyName       *string    `json:"company_name,omitempty"`
	JobTitle          *string    `json:"job_title,omitempty"`
	ServiceRequired   *string    `json:"service_required,omitempty"`
	SpecialtyNeeded   *string    `json:"specialty_needed,omitempty"`
	OfficeLocation    *string    `json:"office_location,omitempty"`
	Details           *string    `json:"details,omitempty"`
	AgreeToNewsletter bool       `json:"agree_to_newsletter"`
	AgreeToContact    bool       `json:"agree_to_contact"`
	EmailSent         bool       `json:"email_sent"`
	EmailSentAt       *time.Time `json:"email_sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
