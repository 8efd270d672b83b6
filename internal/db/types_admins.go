package db

import (
	"time"

	"github.com/google/uuid"
)

// Admin is an account allowed to manage jobs and client logos.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
}
