// Package middleware provides HTTP middleware for admin authentication.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// adminIDKey is the context key for storing the authenticated admin ID.
const adminIDKey ContextKey = "adminID"

// SessionCookie holds the admin session token for browser requests.
const SessionCookie = "azenia_session"

// ErrNoToken is returned when a request carries neither a bearer token nor a session cookie.
var ErrNoToken = errors.New("no session token")

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (AdminIDGetter, error)
}

// AdminIDGetter is an interface for extracting the admin ID from token claims.
type AdminIDGetter interface {
	GetAdminID() uuid.UUID
}

// TokenFromRequest returns the bearer token, or the session cookie value when
// no Authorization header is present. A malformed header is not retried
// against the cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Handle case-insensitive "Bearer" prefix
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", fmt.Errorf("malformed authorization header")
		}
		return parts[1], nil
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", ErrNoToken
}

// Authenticate validates the request's token and returns the admin ID.
func Authenticate(r *http.Request, tokens TokenValidator) (uuid.UUID, error) {
	token, err := TokenFromRequest(r)
	if err != nil {
		return uuid.Nil, err
	}
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.GetAdminID(), nil
}

// AuthMiddleware creates middleware that validates the session and adds the
// admin ID to the request context. Requests without a valid session are
// passed to unauthorized; a nil unauthorized answers a plain 401.
func AuthMiddleware(tokens TokenValidator, unauthorized http.Handler) func(http.Handler) http.Handler {
	if unauthorized == nil {
		unauthorized = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminID, err := Authenticate(r, tokens)
			if err != nil {
				unauthorized.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), adminID)))
		})
	}
}

// WithAdminID returns a copy of ctx carrying the admin ID.
func WithAdminID(ctx context.Context, adminID uuid.UUID) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

// GetAdminID extracts the authenticated admin ID from the request context.
func GetAdminID(r *http.Request) (uuid.UUID, error) {
	adminID, ok := r.Context().Value(adminIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("admin ID not found in request context")
	}
	return adminID, nil
}

// AdminIDKey returns the context key for admin ID (for testing purposes).
func AdminIDKey() ContextKey {
	return adminIDKey
}
