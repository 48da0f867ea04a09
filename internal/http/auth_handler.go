package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth    Authenticator
	jar     cookieJar
	timeout time.Duration
}

func NewAuthHandler(auth Authenticator, jar cookieJar, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		jar:     jar,
		timeout: timeout,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, token, err := h.auth.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.signIn(w, r, user, token, http.StatusCreated)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	h.signIn(w, r, user, token, http.StatusOK)
}

// signIn starts the checkout over when a different user takes the session.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *domain.User, token string, status int) {
	if prev := userFromContext(r.Context()); prev == nil || prev.ID != user.ID {
		if err := sessionFromContext(r.Context()).Checkout.Reset(); err != nil {
			respondErr(w, r, err)
			return
		}
	}
	if err := h.jar.setToken(w, r, token); err != nil {
		requestLogger(r).Error("failed to save session cookie", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "session_error", "could not sign you in")
		return
	}
	respondJSON(w, status, AuthResponse{User: user, Token: token})
}

// Logout handles POST /api/v1/auth/logout. Signing out without a session
// succeeds. The checkout drafts of the signed out user are discarded.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := sessionFromContext(r.Context()).Checkout.Reset(); err != nil {
		respondErr(w, r, err)
		return
	}

	token := bearerToken(r)
	if token == "" {
		token, _ = h.jar.load(r).Values[tokenValue].(string)
	}
	if token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			respondErr(w, r, err)
			return
		}
	}
	if err := h.jar.setToken(w, r, ""); err != nil {
		requestLogger(r).Warn("failed to clear session cookie", zap.Error(err))
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "not signed in")
		return
	}
	respondJSON(w, http.StatusOK, map[string]*domain.User{"user": user})
}
