// Package types provides the request and response shapes of the site's JSON API.
package types

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// LoginRequest represents the admin login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateAdminRequest represents the request to create an admin account.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Admin is an admin account as exposed by the API (no password hash).
type Admin struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the session token and the signed-in admin.
type LoginResponse struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin"`
}

// validate reports failing fields by their JSON names.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}()

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CreateAdminRequest using the validator.
func (r *CreateAdminRequest) Validate() error {
	return validate.Struct(r)
}
