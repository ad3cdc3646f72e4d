package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"suma/internal/model"
)

// SessionClient calls protected endpoints of a suma server with a bearer
// token, refreshing it once through the refresh cookie when it is missing
// or rejected.
type SessionClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewSessionClient creates a client for baseURL. A cookie jar is attached
// when httpClient has none, since the refresh token travels as a cookie.
func NewSessionClient(baseURL string, httpClient *http.Client, logger *slog.Logger) (*SessionClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		clone := *httpClient
		clone.Jar = jar
		httpClient = &clone
	}
	return &SessionClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger.With("component", "session_client"),
	}, nil
}

// Token returns the current access token
func (c *SessionClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *SessionClient) setToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// Login signs in and keeps the access token; the refresh cookie lands in the jar
func (c *SessionClient) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(model.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/auth/login", body, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrInvalidCredentials
	}
	return c.storeToken(resp)
}

// Do sends an authenticated request. Without a token one refresh is
// attempted first; a 401 answer triggers one refresh and a single retry.
// ErrLoginRequired means the caller has to log in again.
func (c *SessionClient) Do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if c.Token() == "" {
		if err := c.Refresh(ctx); err != nil {
			return nil, ErrLoginRequired
		}
	}

	resp, err := c.send(ctx, method, path, body, c.Token())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.Refresh(ctx); err != nil {
		return nil, ErrLoginRequired
	}
	return c.send(ctx, method, path, body, c.Token())
}

// Refresh exchanges the refresh cookie for a new access token
func (c *SessionClient) Refresh(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/v1/auth/refresh", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setToken("")
		return fmt.Errorf("refresh failed with status %d", resp.StatusCode)
	}
	return c.storeToken(resp)
}

func (c *SessionClient) storeToken(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var tokens model.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return fmt.Errorf("no access token returned")
	}
	c.setToken(tokens.AccessToken)
	return nil
}

func (c *SessionClient) send(ctx context.Context, method, path string, body []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	return resp, nil
}
