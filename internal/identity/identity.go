// Package identity registers and signs in shoppers and issues the bearer
// tokens that identify them afterwards.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/matthewhartstonge/argon2"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUnauthenticated    = errors.New("not signed in")
)

const MinPasswordLength = 6

// Demo account seeded into the mock backend. It owns the sample orders.
const (
	DemoUserID   = "demo-user"
	DemoName     = "John Doe"
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

type Provider interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateLogin(email, password string) error {
	var missing []string
	if normalizeEmail(email) == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apperr.Validation("email and password are required", missing...)
	}
	return nil
}

func validateRegistration(name, email, password string) error {
	var missing []string
	if strings.TrimSpace(name) == "" {
		missing = append(missing, "name")
	}
	if normalizeEmail(email) == "" || !strings.Contains(email, "@") {
		missing = append(missing, "email")
	}
	if len(password) < MinPasswordLength {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apperr.Validation(
			fmt.Sprintf("name, a valid email and a password of at least %d characters are required", MinPasswordLength),
			missing...)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(encoded), nil
}

func verifyPassword(encodedHash, password string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	return err == nil && ok
}
