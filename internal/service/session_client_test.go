package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sumalog "suma/internal/log"
	"suma/internal/model"
)

// sessionServer issues "fresh" on refresh and only accepts that token
type sessionServer struct {
	refreshes  atomic.Int32
	protected  atomic.Int32
	allowRenew bool
}

func (s *sessionServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refresh_token", Value: "r1", Path: "/"})
		_ = json.NewEncoder(w).Encode(model.TokenResponse{AccessToken: "stale", TokenType: "bearer"})
	})
	mux.HandleFunc("/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		s.refreshes.Add(1)
		if _, err := r.Cookie("refresh_token"); err != nil || !s.allowRenew {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(model.TokenResponse{AccessToken: "fresh", TokenType: "bearer"})
	})
	mux.HandleFunc("/v1/metrics/buffer", func(w http.ResponseWriter, r *http.Request) {
		s.protected.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestSessionClientRefreshesOnceOn401(t *testing.T) {
	ss := &sessionServer{allowRenew: true}
	srv := httptest.NewServer(ss.handler())
	defer srv.Close()

	client, err := NewSessionClient(srv.URL, nil, sumalog.Discard())
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), "admin", "secret"))
	assert.Equal(t, "stale", client.Token())

	resp, err := client.Do(context.Background(), http.MethodGet, "/v1/metrics/buffer", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), ss.refreshes.Load())
	assert.Equal(t, int32(2), ss.protected.Load())
	assert.Equal(t, "fresh", client.Token())
}

func TestSessionClientRequiresLoginWhenRefreshFails(t *testing.T) {
	ss := &sessionServer{allowRenew: false}
	srv := httptest.NewServer(ss.handler())
	defer srv.Close()

	client, err := NewSessionClient(srv.URL, nil, sumalog.Discard())
	require.NoError(t, err)

	_, err = client.Do(context.Background(), http.MethodGet, "/v1/metrics/buffer", nil)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, int32(0), ss.protected.Load())

	require.NoError(t, client.Login(context.Background(), "admin", "secret"))
	_, err = client.Do(context.Background(), http.MethodGet, "/v1/metrics/buffer", nil)
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, int32(1), ss.protected.Load(), "no retry without a renewed token")
}
