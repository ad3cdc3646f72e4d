package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suma/internal/config"
)

func newAuthService() *AuthService {
	return NewAuthService(config.AuthConfig{
		Username:        "admin",
		Password:        "secret",
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc := newAuthService()

	pair, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not pass as access token")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, err := newAuthService().Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshIssuesAccessToken(t *testing.T) {
	svc := newAuthService()
	pair, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	access, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(access)
	assert.NoError(t, err)

	_, err = svc.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpires(t *testing.T) {
	svc := newAuthService()
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	pair, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Refresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	other := NewAuthService(config.AuthConfig{Username: "admin", Password: "secret", JWTSecret: "other", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	pair, err := other.Login("admin", "secret")
	require.NoError(t, err)

	_, err = newAuthService().ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
