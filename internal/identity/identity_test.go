package identity

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *Tokens) {
	t.Helper()
	mock, err := NewMock()
	require.NoError(t, err)
	tokens := NewTokens("test-secret", time.Hour)
	return NewService(mock, tokens), tokens
}

func TestMock_LoginDemoAccount(t *testing.T) {
	mock, err := NewMock()
	require.NoError(t, err)

	user, err := mock.Login(context.Background(), "  Demo@Example.com ", DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, DemoUserID, user.ID)
	assert.Equal(t, DemoName, user.Name)
}

func TestMock_LoginWrongPassword(t *testing.T) {
	mock, err := NewMock()
	require.NoError(t, err)

	_, err = mock.Login(context.Background(), DemoEmail, "not-it")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = mock.Login(context.Background(), "nobody@example.com", DemoPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMock_LoginValidation(t *testing.T) {
	mock, err := NewMock()
	require.NoError(t, err)

	_, err = mock.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, []string{"email", "password"}, apperr.As(err).Fields)
}

func TestMock_Register(t *testing.T) {
	mock, err := NewMock()
	require.NoError(t, err)
	ctx := context.Background()

	user, err := mock.Register(ctx, "Ada Lovelace", "Ada@Example.com", "engine42")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	again, err := mock.Login(ctx, "ada@example.com", "engine42")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	_, err = mock.Register(ctx, "Someone Else", "ADA@example.com", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	mock, err := NewMock()
	require.NoError(t, err)

	tests := []struct {
		name, userName, email, password string
		fields                          []string
	}{
		{"blank name", " ", "a@b.c", "secret1", []string{"name"}},
		{"bad email", "A", "not-an-email", "secret1", []string{"email"}},
		{"short password", "A", "a@b.c", "12345", []string{"password"}},
		{"everything", "", "", "", []string{"name", "email", "password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mock.Register(context.Background(), tt.userName, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.fields, apperr.As(err).Fields)
		})
	}
}

func TestService_LoginAndCurrentUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	current, err := svc.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, current)
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, token, err := svc.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.CurrentUser(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// a fresh login still works
	_, token2, err := svc.Login(ctx, DemoEmail, DemoPassword)
	require.NoError(t, err)
	_, err = svc.CurrentUser(ctx, token2)
	assert.NoError(t, err)

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestTokens_Expired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return start }

	token, err := tokens.Issue(&domain.User{ID: "u1", Name: "A", Email: "a@b.c"})
	require.NoError(t, err)

	tokens.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokens_WrongSecret(t *testing.T) {
	token, err := NewTokens("one", time.Hour).Issue(&domain.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTokens_RevokedListIsPruned(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return start }

	token, err := tokens.Issue(&domain.User{ID: "u1"})
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	tokens.Revoke(claims)
	require.Len(t, tokens.revoked, 1)

	tokens.now = func() time.Time { return start.Add(3 * time.Hour) }
	tokens.Revoke(&Claims{})
	assert.Empty(t, tokens.revoked)
}
