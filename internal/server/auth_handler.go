package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/azenia/website/internal/server/middleware"
	"github.com/azenia/website/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	admins    *AdminService
	jwt       *JWTService
	validator *validator.Validate
	respond   func(w http.ResponseWriter, status int, body types.Envelope)
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(admins *AdminService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		admins:    admins,
		jwt:       jwtService,
		validator: newTagValidator("json"),
		respond:   writeEnvelope,
	}
}

// Login handles admin login requests and answers with a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, types.Fail("Invalid request body"))
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		h.respond(w, http.StatusBadRequest, types.Fail(extractValidationErrors(err)))
		return
	}

	resp, err := h.authenticate(r, &req)
	if err != nil {
		status := HTTPStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Login failed"
		}
		h.respond(w, status, types.Fail(msg))
		return
	}

	h.respond(w, http.StatusOK, types.OK(resp))
}

// Me returns the admin behind the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetAdminID(r)
	if err != nil {
		h.respond(w, http.StatusUnauthorized, types.Fail("Unauthorized"))
		return
	}

	admin, err := h.admins.Get(r.Context(), adminID)
	if err != nil {
		status := HTTPStatus(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Failed to load admin"
		}
		h.respond(w, status, types.Fail(msg))
		return
	}

	h.respond(w, http.StatusOK, types.OK(admin))
}

// authenticate checks credentials and issues a token.
func (h *AuthHandler) authenticate(r *http.Request, req *types.LoginRequest) (*types.LoginResponse, error) {
	admin, err := h.admins.Login(r.Context(), req)
	if err != nil {
		return nil, err
	}

	token, err := h.jwt.GenerateToken(admin.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &types.LoginResponse{Token: token, Admin: admin}, nil
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	return validationError(err).Error()
}

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) *ErrValidation {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "invalid request"}
}
