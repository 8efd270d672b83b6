package db

import (
	"time"

	"github.com/google/uuid"
)

// ClientLogo is an entry in the homepage client carousel.
type ClientLogo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogoInput creates a client logo.
type LogoInput struct {
	Name         string
	ImageURL     string
	DisplayOrder int
	IsActive     bool
}

// LogoFields updates a client logo; nil fields are kept.
type LogoFields struct {
	Name         *string `json:"name,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (f LogoFields) assignments() []assignment {
	var sets []assignment
	if f.Name != nil {
		sets = append(sets, assignment{"name", *f.Name})
	}
	if f.DisplayOrder != nil {
		sets = append(sets, assignment{"display_order", *f.DisplayOrder})
	}
	if f.IsActive != nil {
		sets = append(sets, assignment{"is_active", *f.IsActive})
	}
	return sets
}

const logoColumns = `id, name, image_url, display_order, is_active, created_at`
