package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/types"
)

// AdminStore is the admin account persistence used by AdminService.
type AdminStore interface {
	CreateAdmin(ctx context.Context, email, passwordHash string) (*db.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*db.Admin, error)
	GetAdmin(ctx context.Context, id uuid.UUID) (*db.Admin, error)
}

// AdminService provides business logic for admin authentication operations
type AdminService struct {
	store AdminStore
	auth  config.AuthConfig
}

// NewAdminService creates a new AdminService with the given dependencies
func NewAdminService(store AdminStore, auth config.AuthConfig) *AdminService {
	return &AdminService{store: store, auth: auth}
}

// toAdminView converts db.Admin to types.Admin, excluding password hash
func toAdminView(a *db.Admin) *types.Admin {
	if a == nil {
		return nil
	}
	return &types.Admin{ID: a.ID, Email: a.Email, CreatedAt: a.CreatedAt}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new admin account.
func (s *AdminService) Create(ctx context.Context, req *types.CreateAdminRequest) (*types.Admin, error) {
	req.Email = normalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.store.GetAdminByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	admin, err := s.store.CreateAdmin(ctx, req.Email, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return toAdminView(admin), nil
}

// Login authenticates an admin and returns the account.
func (s *AdminService) Login(ctx context.Context, req *types.LoginRequest) (*types.Admin, error) {
	admin, err := s.store.GetAdminByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	// Security: Always return generic error if admin not found or password wrong
	if admin == nil || !s.auth.VerifyPassword(req.Password, admin.PasswordHash) {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeAuth,
			"email":               req.Email,
		}).Warn("Rejected admin login")
		return nil, &ErrInvalidCredentials{}
	}

	return toAdminView(admin), nil
}

// Get returns the admin with the given ID, or ErrNotFound.
func (s *AdminService) Get(ctx context.Context, id uuid.UUID) (*types.Admin, error) {
	admin, err := s.store.GetAdmin(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if admin == nil {
		return nil, &ErrNotFound{Resource: "Admin"}
	}
	return toAdminView(admin), nil
}
