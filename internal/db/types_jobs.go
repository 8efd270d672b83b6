package db

import (
	"time"

	"github.com/google/uuid"
)

// Job is a posting on the public job board.
type Job struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Department   string    `json:"department"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements string    `json:"requirements"`
	IsNew        bool      `json:"is_new"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobFields carries the writable job columns. Nil fields are left out of
// the statement, so an insert falls back to column defaults and an update
// keeps the stored value.
type JobFields struct {
	Title        *string `json:"title,omitempty"`
	Department   *string `json:"department,omitempty"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	Requirements *string `json:"requirements,omitempty"`
	IsNew        *bool   `json:"is_new,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f JobFields) IsEmpty() bool {
	return len(f.assignments()) == 0
}

func (f JobFields) assignments() []assignment {
	var sets []assignment
	if f.Title != nil {
		sets = append(sets, assignment{"title", *f.Title})
	}
	if f.Department != nil {
		sets = append(sets, assignment{"department", *f.Department})
	}
	if f.Location != nil {
		sets = append(sets, assignment{"location", *f.Location})
	}
	if f.Description != nil {
		sets = append(sets, assignment{"description", *f.Description})
	}
	if f.Requirements != nil {
		sets = append(sets, assignment{"requirements", *f.Requirements})
	}
	if f.IsNew != nil {
		sets = append(sets, assignment{"is_new", *f.IsNew})
	}
	return sets
}

const jobColumns = `id, title, department, location, description, requirements, is_new, created_at, updated_at`
