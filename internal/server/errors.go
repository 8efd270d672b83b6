// Package server serves the Azenia site: the HTML pages, the JSON API and
// the form posts behind them.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/schemas"
)

// ErrEmailAlreadyExists indicates an admin account already uses the email.
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUnauthorized indicates a request without a usable admin session.
type ErrUnauthorized struct {
	Err error
}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized: " + e.Err.Error()
}

func (e *ErrUnauthorized) Unwrap() error {
	return e.Err
}

// ErrNotFound indicates the addressed resource does not exist.
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return e.Resource + " not found"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		badLogin     *ErrInvalidCredentials
		unauthorized *ErrUnauthorized
		notFound     *ErrNotFound
		invalid      *ErrValidation
		relayInvalid *relay.ValidationError
		schemaErr    *schemas.ValidationError
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badLogin), errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &relayInvalid), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
