package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	cookieName = "storefront_session"
	sidValue   = "sid"
	tokenValue = "token"
)

// Sessions resolves the per-visitor cart and checkout state.
type Sessions interface {
	Get(ctx context.Context, id string) *session.Session
}

// Authenticator is the identity surface used by the API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// RequestLogger logs one line per request and stores a request scoped logger
// in the context.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			l := logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			r = r.WithContext(withLogger(r.Context(), l))

			defer func() {
				requestLogger(r).Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// cookieJar keeps the session id and the auth token in a signed cookie.
type cookieJar struct {
	store sessions.Store
}

func (c cookieJar) load(r *http.Request) *sessions.Session {
	// A cookie that fails to decode yields a fresh session.
	s, _ := c.store.Get(r, cookieName)
	return s
}

func (c cookieJar) setToken(w http.ResponseWriter, r *http.Request, token string) error {
	s := c.load(r)
	if sess := sessionFromContext(r.Context()); sess != nil {
		s.Values[sidValue] = sess.ID
	}
	if token == "" {
		delete(s.Values, tokenValue)
	} else {
		s.Values[tokenValue] = token
	}
	return s.Save(r, w)
}

// NewCookieStore builds the signed cookie store for the session cookie.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// LoadSession attaches the visitor's session, issuing a session id on the
// first visit, and the signed in user when the request carries a valid token.
// A bearer token takes precedence over the cookie.
func LoadSession(jar cookieJar, manager Sessions, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie := jar.load(r)

			sid, _ := cookie.Values[sidValue].(string)
			if sid == "" {
				sid = uuid.NewString()
				cookie.Values[sidValue] = sid
				if err := cookie.Save(r, w); err != nil {
					requestLogger(r).Error("failed to save session cookie", zap.Error(err))
					respondError(w, http.StatusInternalServerError, "session_error", "could not start a session")
					return
				}
			}
			ctx := withSession(r.Context(), manager.Get(r.Context(), sid))

			token := bearerToken(r)
			if token == "" {
				token, _ = cookie.Values[tokenValue].(string)
			}
			if token != "" {
				if user, err := auth.CurrentUser(ctx, token); err == nil {
					ctx = withUser(ctx, user)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireUser rejects requests without a signed in user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "please sign in to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}
