package identity

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
)

// Service adds session tokens on top of a Provider.
type Service struct {
	provider Provider
	tokens   *Tokens
}

func NewService(provider Provider, tokens *Tokens) *Service {
	return &Service{provider: provider, tokens: tokens}
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.provider.Login(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	return s.issue(user)
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	user, err := s.provider.Register(ctx, name, email, password)
	if err != nil {
		return nil, "", err
	}
	return s.issue(user)
}

// Logout revokes token. Logging out with an invalid token is not an error.
func (s *Service) Logout(_ context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	s.tokens.Revoke(claims)
	return nil
}

func (s *Service) CurrentUser(_ context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	return claims.User(), nil
}

func (s *Service) issue(user *domain.User) (*domain.User, string, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
