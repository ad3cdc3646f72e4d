package model

import "github.com/golang-jwt/jwt/v5"

// Token types carried in SessionClaims
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// SessionClaims are JWT claims for console users
type SessionClaims struct {
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for console login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenPair is what AuthService issues on login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
