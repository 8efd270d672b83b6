package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds admin session and password hashing settings.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	JWTExpirationHours int    `mapstructure:"jwt_expiration_hours"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	Pepper             string `mapstructure:"password_pepper"`
}

// TokenTTL is the lifetime of issued session tokens.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c AuthConfig) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("missing variable: JWT_SECRET"))
	}
	if c.JWTExpirationHours < 1 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.JWTExpirationHours))
	}
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost))
	}
	return errors.Join(errs...)
}

func (c AuthConfig) bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string]string{
		"auth.jwt_secret":           "JWT_SECRET",
		"auth.jwt_expiration_hours": "JWT_EXPIRATION_HOURS",
		"auth.bcrypt_cost":          "BCRYPT_COST",
		"auth.password_pepper":      "PASSWORD_PEPPER",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

// HashPassword hashes a password using bcrypt (with optional pepper).
func (c AuthConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a password against a stored hash (with optional pepper).
func (c AuthConfig) VerifyPassword(pw, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}
