package http

import (
	"context"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/pkg/logger"
	"go.uber.org/zap"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	userKey
	loggerKey
)

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func sessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

func withUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func userFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(userKey).(*domain.User)
	return u
}

func withLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// requestLogger returns the request scoped logger, tagged with the trace of
// the request when there is one.
func requestLogger(r *http.Request) *zap.Logger {
	l, ok := r.Context().Value(loggerKey).(*zap.Logger)
	if !ok {
		l = zap.L()
	}
	return logger.WithContext(r.Context(), l)
}
