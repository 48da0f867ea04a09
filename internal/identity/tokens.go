package identity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) User() *domain.User {
	return &domain.User{ID: c.Subject, Name: c.Name, Email: c.Email}
}

// Tokens signs HS256 tokens and remembers revoked token ids until they would
// have expired anyway.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (t *Tokens) Issue(user *domain.User) (string, error) {
	now := t.now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, expiry and revocation. Every failure is
// ErrUnauthenticated.
func (t *Tokens) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, errors.Join(ErrUnauthenticated, err)
	}

	t.mu.Lock()
	_, revoked := t.revoked[claims.ID]
	t.mu.Unlock()
	if revoked {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func (t *Tokens) Revoke(claims *Claims) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for id, exp := range t.revoked {
		if now.After(exp) {
			delete(t.revoked, id)
		}
	}
	if claims.ExpiresAt != nil {
		t.revoked[claims.ID] = claims.ExpiresAt.Time
	}
}
