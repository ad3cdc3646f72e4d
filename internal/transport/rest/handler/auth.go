package handler

import (
	"errors"
	"net/http"
	"time"

	"suma/internal/model"
	"suma/internal/service"
)

// RefreshCookieName carries the refresh token between login and refresh
const RefreshCookieName = "refresh_token"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc    *service.AuthService
	refreshTTL time.Duration
	secure     bool
}

// NewAuthHandler creates a new auth handler. secure marks the refresh
// cookie HTTPS-only.
func NewAuthHandler(authSvc *service.AuthService, refreshTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, refreshTTL: refreshTTL, secure: secure}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pair, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/v1/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, model.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

// Refresh handles POST /v1/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	access, err := h.authSvc.Refresh(cookie.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, service.ErrInvalidToken.Error())
		return
	}
	writeJSON(w, http.StatusOK, model.TokenResponse{AccessToken: access, TokenType: "bearer"})
}
