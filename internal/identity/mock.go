package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

type account struct {
	user domain.User
	hash string
}

// Mock keeps accounts in memory, keyed by normalised email.
type Mock struct {
	mu       sync.RWMutex
	accounts map[string]account
}

// NewMock returns a provider that already knows the demo account.
func NewMock() (*Mock, error) {
	m := &Mock{accounts: make(map[string]account)}
	hash, err := hashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}
	m.accounts[DemoEmail] = account{
		user: domain.User{ID: DemoUserID, Name: DemoName, Email: DemoEmail},
		hash: hash,
	}
	return m, nil
}

func (m *Mock) Login(_ context.Context, email, password string) (*domain.User, error) {
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	m.mu.RLock()
	acc, ok := m.accounts[normalizeEmail(email)]
	m.mu.RUnlock()
	if !ok || !verifyPassword(acc.hash, password) {
		return nil, ErrInvalidCredentials
	}
	user := acc.user
	return &user, nil
}

func (m *Mock) Register(_ context.Context, name, email, password string) (*domain.User, error) {
	if err := validateRegistration(name, email, password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	key := normalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.accounts[key]; taken {
		return nil, ErrEmailTaken
	}
	acc := account{
		user: domain.User{ID: uuid.NewString(), Name: strings.TrimSpace(name), Email: key},
		hash: hash,
	}
	m.accounts[key] = acc
	user := acc.user
	return &user, nil
}
